package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"itam_platform/platform/catalog"
	"itam_platform/platform/services"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

var ErrUnauthorized = errors.New("unauthorized")

type client struct {
	api       chi.Router
	authToken string
	userId    string
}

func (c *client) Get(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "GET", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Post(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "POST", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Put(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "PUT", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "DELETE", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

type loginInfo struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *client) signup(username, email, password string) (loginInfo, error) {
	body := map[string]string{
		"email": email, "username": username, "password": password,
	}

	err := c.Post("/user/signup").Json(body).Do(nil)
	if err != nil {
		return loginInfo{}, err
	}

	return loginInfo{Email: email, Password: password}, nil
}

func (c *client) login(login loginInfo) error {
	var res map[string]string
	err := c.Post("/user/login").Json(login).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res["access_token"]
	c.userId = res["user_id"]

	return nil
}

func (c *client) addUser(username, email, password string) (loginInfo, error) {
	body := map[string]string{
		"email": email, "username": username, "password": password,
	}

	err := c.Post("/user/create").Json(body).Do(nil)
	if err != nil {
		return loginInfo{}, err
	}

	return loginInfo{Email: email, Password: password}, nil
}

func (c *client) deleteUser(userId string) error {
	return c.Delete(fmt.Sprintf("/user/%v", userId)).Do(nil)
}

func (c *client) promoteAdmin(userId string) error {
	return c.Post(fmt.Sprintf("/user/%v/admin", userId)).Do(nil)
}

func (c *client) demoteAdmin(userId string) error {
	return c.Delete(fmt.Sprintf("/user/%v/admin", userId)).Do(nil)
}

func (c *client) listUsers() ([]services.UserInfo, error) {
	var res []services.UserInfo
	err := c.Get("/user/list").Do(&res)
	return res, err
}

func (c *client) userInfo() (services.UserInfo, error) {
	var res services.UserInfo
	err := c.Get("/user/info").Do(&res)
	return res, err
}

func (c *client) verifyMasterPassword(password string) (bool, error) {
	body := map[string]string{"password": password}

	var res map[string]bool
	err := c.Post("/master-password/verify").Json(body).Do(&res)
	return res["verified"], err
}

func (c *client) categories() ([]services.CategoryInfo, error) {
	var res []services.CategoryInfo
	err := c.Get("/assets/categories").Do(&res)
	return res, err
}

func (c *client) createAsset(category catalog.Category, fields map[string]string, allotedUserName string) (string, error) {
	body := map[string]interface{}{
		"fields":            fields,
		"alloted_user_name": allotedUserName,
	}

	var res map[string]string
	err := c.Post(fmt.Sprintf("/assets/%v", category)).Json(body).Do(&res)
	return res["asset_id"], err
}

func (c *client) getAsset(category catalog.Category, assetId string) (services.AssetInfo, error) {
	var res services.AssetInfo
	err := c.Get(fmt.Sprintf("/assets/%v/%v", category, assetId)).Do(&res)
	return res, err
}

func (c *client) getAssetRevealed(category catalog.Category, assetId string) (services.AssetInfo, error) {
	var res services.AssetInfo
	err := c.Get(fmt.Sprintf("/assets/%v/%v?reveal=true", category, assetId)).Do(&res)
	return res, err
}

func (c *client) listAssets(category catalog.Category) ([]services.AssetInfo, error) {
	var res []services.AssetInfo
	err := c.Get(fmt.Sprintf("/assets/%v", category)).Do(&res)
	return res, err
}

func (c *client) updateAsset(category catalog.Category, assetId string, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/assets/%v/%v", category, assetId)).Json(body).Do(nil)
}

func (c *client) reassignAsset(category catalog.Category, assetId, newHolder string) error {
	body := map[string]interface{}{
		"changed_fields":    map[string]string{},
		"alloted_user_name": newHolder,
	}
	return c.Put(fmt.Sprintf("/assets/%v/%v", category, assetId)).Json(body).Do(nil)
}

func (c *client) deleteAsset(category catalog.Category, assetId string) error {
	return c.Delete(fmt.Sprintf("/assets/%v/%v", category, assetId)).Do(nil)
}

func (c *client) hostnames() ([]services.HostnameInfo, error) {
	var res []services.HostnameInfo
	err := c.Get("/assets/hostnames").Do(&res)
	return res, err
}

func (c *client) swapHostnames(assetId1, assetId2 string) error {
	body := map[string]string{
		"asset_id_1": assetId1, "asset_id_2": assetId2,
	}
	return c.Post("/assets/swap-hostnames").Json(body).Do(nil)
}

func (c *client) createEmployee(fields map[string]interface{}) (string, error) {
	var res map[string]string
	err := c.Post("/users").Json(fields).Do(&res)
	return res["employee_id"], err
}

func (c *client) getEmployee(employeeId string) (services.EmployeeInfo, error) {
	var res services.EmployeeInfo
	err := c.Get(fmt.Sprintf("/users/%v", employeeId)).Do(&res)
	return res, err
}

func (c *client) updateEmployee(employeeId string, body map[string]interface{}) error {
	return c.Put(fmt.Sprintf("/users/%v", employeeId)).Json(body).Do(nil)
}

func (c *client) deleteEmployee(employeeId string) error {
	return c.Delete(fmt.Sprintf("/users/%v", employeeId)).Do(nil)
}

func (c *client) createSimCard(fields map[string]interface{}) (string, error) {
	var res map[string]string
	err := c.Post("/simcard-users").Json(fields).Do(&res)
	return res["sim_card_id"], err
}

func (c *client) getSimCard(simCardId string) (services.SimCardInfo, error) {
	var res services.SimCardInfo
	err := c.Get(fmt.Sprintf("/simcard-users/%v", simCardId)).Do(&res)
	return res, err
}

func (c *client) updateSimCard(simCardId string, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/simcard-users/%v", simCardId)).Json(body).Do(nil)
}

func (c *client) createVendor(fields map[string]interface{}) (string, error) {
	var res map[string]string
	err := c.Post("/vendors").Json(fields).Do(&res)
	return res["vendor_id"], err
}

func (c *client) getVendor(vendorId string) (services.VendorInfo, error) {
	var res services.VendorInfo
	err := c.Get(fmt.Sprintf("/vendors/%v", vendorId)).Do(&res)
	return res, err
}

func (c *client) updateVendor(vendorId string, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/vendors/%v", vendorId)).Json(body).Do(nil)
}

func (c *client) deleteVendor(vendorId string) error {
	return c.Delete(fmt.Sprintf("/vendors/%v", vendorId)).Do(nil)
}

func (c *client) createEmail(address, password, status string) (string, error) {
	body := map[string]string{
		"email_address": address, "email_password": password, "status": status,
	}

	var res map[string]string
	err := c.Post("/emails").Json(body).Do(&res)
	return res["email_id"], err
}

func (c *client) getEmail(emailId string) (services.EmailInfo, error) {
	var res services.EmailInfo
	err := c.Get(fmt.Sprintf("/emails/%v", emailId)).Do(&res)
	return res, err
}

func (c *client) listEmails(activeOnly bool) ([]services.EmailInfo, error) {
	endpoint := "/emails"
	if activeOnly {
		endpoint = "/emails/active"
	}

	var res []services.EmailInfo
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) emailCounts() (map[string]int64, error) {
	var res map[string]int64
	err := c.Get("/emails/count").Do(&res)
	return res, err
}

func (c *client) updateEmail(emailId string, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/emails/%v", emailId)).Json(body).Do(nil)
}

func (c *client) forwardEmail(emailId, forwardTo string) error {
	body := map[string]string{"forward_to": forwardTo}
	return c.Post(fmt.Sprintf("/emails/%v/forward", emailId)).Json(body).Do(nil)
}

func (c *client) assignEmail(emailId, employeeId string) error {
	body := map[string]string{"employee_id": employeeId}
	return c.Post(fmt.Sprintf("/emails/%v/assign", emailId)).Json(body).Do(nil)
}

func (c *client) unassignEmail(emailId, employeeId string) error {
	return c.Delete(fmt.Sprintf("/emails/%v/assign/%v", emailId, employeeId)).Do(nil)
}

func (c *client) emailsForEmployee(employeeId string) ([]services.EmailInfo, error) {
	var res []services.EmailInfo
	err := c.Get(fmt.Sprintf("/emails/user/%v", employeeId)).Do(&res)
	return res, err
}

func (c *client) assignableEmployees() ([]services.EmployeeInfo, error) {
	var res []services.EmployeeInfo
	err := c.Get("/emails/users").Do(&res)
	return res, err
}

func (c *client) deleteEmail(emailId string) error {
	return c.Delete(fmt.Sprintf("/emails/%v", emailId)).Do(nil)
}

func (c *client) createInvoice(body map[string]interface{}) (string, error) {
	var res map[string]string
	err := c.Post("/invoices").Json(body).Do(&res)
	return res["invoice_id"], err
}

func (c *client) getInvoice(invoiceId string) (services.InvoiceInfo, error) {
	var res services.InvoiceInfo
	err := c.Get(fmt.Sprintf("/invoices/%v", invoiceId)).Do(&res)
	return res, err
}

func (c *client) listInvoices(vendorId string) ([]services.InvoiceInfo, error) {
	endpoint := "/invoices"
	if vendorId != "" {
		endpoint += "?vendor_id=" + vendorId
	}
	var res []services.InvoiceInfo
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) uploadInvoiceFile(invoiceId, filename string, content []byte) error {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return c.Post(fmt.Sprintf("/invoices/%v/upload", invoiceId)).
		Header("Content-Type", writer.FormDataContentType()).
		Body(body).Do(nil)
}

func (c *client) downloadInvoiceFile(invoiceId string) ([]byte, error) {
	endpoint := fmt.Sprintf("/invoices/%v/download", invoiceId)
	req := httptest.NewRequest("GET", endpoint, nil)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %v", c.authToken))
	w := httptest.NewRecorder()
	c.api.ServeHTTP(w, req)

	res := w.Result()
	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get %v failed with status %d and res '%v'", endpoint, res.StatusCode, w.Body.String())
	}

	return io.ReadAll(w.Body)
}

func (c *client) deleteInvoice(invoiceId string) error {
	return c.Delete(fmt.Sprintf("/invoices/%v", invoiceId)).Do(nil)
}

func (c *client) auditLogs(query string) ([]services.LogEntry, error) {
	endpoint := "/logs"
	if query != "" {
		endpoint += "?" + query
	}

	var res []services.LogEntry
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) composeNotice(noticeType, query string) (map[string]string, error) {
	endpoint := fmt.Sprintf("/compose-email/%v", noticeType)
	if query != "" {
		endpoint += "?" + query
	}

	var res map[string]string
	err := c.Get(endpoint).Do(&res)
	return res, err
}
