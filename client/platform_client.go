package client

import (
	"context"
	"fmt"
	"io"
	"itam_platform/platform/catalog"
	"itam_platform/platform/gate"
	"itam_platform/platform/services"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type PlatformClient struct {
	BaseClient
	userId string
}

func New(baseUrl string) *PlatformClient {
	return &PlatformClient{BaseClient: BaseClient{baseUrl: baseUrl}}
}

func (c *PlatformClient) Signup(username, email, password string) error {
	body := map[string]string{
		"email": email, "username": username, "password": password,
	}

	return c.Post("/api/v1/user/signup").Json(body).Do(nil)
}

func (c *PlatformClient) Login(email, password string) error {
	body := map[string]string{"email": email, "password": password}

	var data map[string]string
	err := c.Post("/api/v1/user/login").Json(body).Do(&data)
	if err != nil {
		return err
	}

	c.authToken = data["access_token"]
	c.userId = data["user_id"]

	return nil
}

func (c *PlatformClient) LoginWithToken(accessToken string) error {
	body := map[string]string{"access_token": accessToken}

	var data map[string]string
	err := c.Post("/api/v1/user/login-with-token").Json(body).Do(&data)
	if err != nil {
		return err
	}

	c.authToken = data["access_token"]
	c.userId = data["user_id"]

	return nil
}

// TokenExpiry reports when the current session token expires. The claims are
// read without signature verification, the server is the only party that
// needs to trust them.
func (c *PlatformClient) TokenExpiry() (time.Time, error) {
	if c.authToken == "" {
		return time.Time{}, fmt.Errorf("client is not logged in")
	}

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(c.authToken, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing session token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("session token has no expiration claim")
	}

	return exp.Time, nil
}

func (c *PlatformClient) UserInfo() (services.UserInfo, error) {
	var info services.UserInfo
	err := c.Get("/api/v1/user/info").Do(&info)
	return info, err
}

func (c *PlatformClient) ListUsers() ([]services.UserInfo, error) {
	var users []services.UserInfo
	err := c.Get("/api/v1/user/list").Do(&users)
	return users, err
}

func (c *PlatformClient) CreateUser(username, email, password string, admin bool) (uuid.UUID, error) {
	body := map[string]interface{}{
		"username": username, "email": email, "password": password, "admin": admin,
	}

	var res struct {
		UserId uuid.UUID `json:"user_id"`
	}
	err := c.Post("/api/v1/user/create").Json(body).Do(&res)
	return res.UserId, err
}

func (c *PlatformClient) DeleteUser(userId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/user/%v", userId)).Do(nil)
}

func (c *PlatformClient) PromoteAdmin(userId uuid.UUID) error {
	return c.Post(fmt.Sprintf("/api/v1/user/%v/admin", userId)).Do(nil)
}

func (c *PlatformClient) DemoteAdmin(userId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/user/%v/admin", userId)).Do(nil)
}

// Verify checks a master password attempt against the server. A wrong
// password is a false result, not an error, so callers can distinguish a
// rejected credential from a failed request.
func (c *PlatformClient) Verify(ctx context.Context, secret string) (bool, error) {
	body := map[string]string{"password": secret}

	var res struct {
		Verified bool `json:"verified"`
	}
	err := c.Post("/api/v1/master-password/verify").Context(ctx).Json(body).Do(&res)
	if err != nil {
		return false, err
	}

	return res.Verified, nil
}

var _ gate.Verifier = (*PlatformClient)(nil)

func (c *PlatformClient) Categories() ([]services.CategoryInfo, error) {
	var categories []services.CategoryInfo
	err := c.Get("/api/v1/assets/categories").Do(&categories)
	return categories, err
}

func (c *PlatformClient) CreateAsset(category catalog.Category, fields map[string]string, allotedUserName string) (uuid.UUID, error) {
	body := map[string]interface{}{
		"fields":            fields,
		"alloted_user_name": allotedUserName,
	}

	var res struct {
		AssetId uuid.UUID `json:"asset_id"`
	}
	err := c.Post(fmt.Sprintf("/api/v1/assets/%v", category)).Json(body).Do(&res)
	return res.AssetId, err
}

func (c *PlatformClient) GetAsset(category catalog.Category, assetId uuid.UUID) (services.AssetInfo, error) {
	var info services.AssetInfo
	err := c.Get(fmt.Sprintf("/api/v1/assets/%v/%v", category, assetId)).Do(&info)
	return info, err
}

// RevealAsset returns the asset with secret attributes unmasked. Callers are
// expected to pass the master password check first.
func (c *PlatformClient) RevealAsset(category catalog.Category, assetId uuid.UUID) (services.AssetInfo, error) {
	var info services.AssetInfo
	err := c.Get(fmt.Sprintf("/api/v1/assets/%v/%v?reveal=true", category, assetId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListAssets(category catalog.Category, filters map[string]string) ([]services.AssetInfo, error) {
	req := c.Get(fmt.Sprintf("/api/v1/assets/%v", category))
	for k, v := range filters {
		req = req.Param(k, v)
	}

	var assets []services.AssetInfo
	err := req.Do(&assets)
	return assets, err
}

func (c *PlatformClient) ListAllAssets(filters map[string]string) ([]services.AssetInfo, error) {
	req := c.Get("/api/v1/assets")
	for k, v := range filters {
		req = req.Param(k, v)
	}

	var assets []services.AssetInfo
	err := req.Do(&assets)
	return assets, err
}

func (c *PlatformClient) UpdateAsset(category catalog.Category, assetId uuid.UUID, changedFields map[string]string, allotedUserName *string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	if allotedUserName != nil {
		body["alloted_user_name"] = *allotedUserName
	}

	return c.Put(fmt.Sprintf("/api/v1/assets/%v/%v", category, assetId)).Json(body).Do(nil)
}

// SaveAssetDraft diffs an edit screen draft against the saved field values
// and submits only the changed fields.
func (c *PlatformClient) SaveAssetDraft(category catalog.Category, assetId uuid.UUID, saved, draft map[string]string) error {
	changed := catalog.Diff(saved, draft)
	if len(changed) == 0 {
		return nil
	}
	return c.UpdateAsset(category, assetId, changed, nil)
}

func (c *PlatformClient) DeleteAsset(category catalog.Category, assetId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/assets/%v/%v", category, assetId)).Do(nil)
}

func (c *PlatformClient) Hostnames() ([]services.HostnameInfo, error) {
	var hostnames []services.HostnameInfo
	err := c.Get("/api/v1/assets/hostnames").Do(&hostnames)
	return hostnames, err
}

func (c *PlatformClient) SwapHostnames(assetId1, assetId2 uuid.UUID) error {
	body := map[string]uuid.UUID{
		"asset_id_1": assetId1,
		"asset_id_2": assetId2,
	}

	return c.Post("/api/v1/assets/swap-hostnames").Json(body).Do(nil)
}

type EmployeeParams struct {
	UserName       string `json:"user_name"`
	EmailId        string `json:"email_id"`
	EmailPassword  string `json:"email_password"`
	DomainId       string `json:"domain_id"`
	DomainPassword string `json:"domain_password"`
	Department     string `json:"department"`
	Location       string `json:"location"`
	Status         string `json:"status"`

	AssetId *uuid.UUID `json:"asset_id,omitempty"`

	Remarks  string `json:"remarks"`
	Comments string `json:"comments"`
}

func (c *PlatformClient) CreateEmployee(params EmployeeParams) (uuid.UUID, error) {
	var res struct {
		EmployeeId uuid.UUID `json:"employee_id"`
	}
	err := c.Post("/api/v1/users").Json(params).Do(&res)
	return res.EmployeeId, err
}

func (c *PlatformClient) GetEmployee(employeeId uuid.UUID) (services.EmployeeInfo, error) {
	var info services.EmployeeInfo
	err := c.Get(fmt.Sprintf("/api/v1/users/%v", employeeId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListEmployees() ([]services.EmployeeInfo, error) {
	var employees []services.EmployeeInfo
	err := c.Get("/api/v1/users").Do(&employees)
	return employees, err
}

func (c *PlatformClient) UpdateEmployee(employeeId uuid.UUID, changedFields map[string]string, assetId *uuid.UUID, clearAssetId bool) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	if assetId != nil {
		body["asset_id"] = *assetId
	}
	if clearAssetId {
		body["clear_asset_id"] = true
	}

	return c.Put(fmt.Sprintf("/api/v1/users/%v", employeeId)).Json(body).Do(nil)
}

func (c *PlatformClient) DeleteEmployee(employeeId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/users/%v", employeeId)).Do(nil)
}

type SimCardParams struct {
	CellNo   string `json:"cell_no"`
	Provider string `json:"provider"`

	CurrentUserName  string `json:"current_user_name"`
	CurrentUserEmail string `json:"current_user_email"`

	Department string `json:"department"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

func (c *PlatformClient) CreateSimCard(params SimCardParams) (uuid.UUID, error) {
	var res struct {
		SimCardId uuid.UUID `json:"sim_card_id"`
	}
	err := c.Post("/api/v1/simcard-users").Json(params).Do(&res)
	return res.SimCardId, err
}

func (c *PlatformClient) GetSimCard(simCardId uuid.UUID) (services.SimCardInfo, error) {
	var info services.SimCardInfo
	err := c.Get(fmt.Sprintf("/api/v1/simcard-users/%v", simCardId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListSimCards() ([]services.SimCardInfo, error) {
	var sims []services.SimCardInfo
	err := c.Get("/api/v1/simcard-users").Do(&sims)
	return sims, err
}

func (c *PlatformClient) UpdateSimCard(simCardId uuid.UUID, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/api/v1/simcard-users/%v", simCardId)).Json(body).Do(nil)
}

func (c *PlatformClient) DeleteSimCard(simCardId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/simcard-users/%v", simCardId)).Do(nil)
}

type VendorParams struct {
	VendorName string `json:"vendor_name"`
	Category   string `json:"category"`
	Location   string `json:"location"`
	Address    string `json:"address"`

	Gstin              string `json:"gstin"`
	RegistrationNumber string `json:"registration_number"`

	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	ContactEmail  string `json:"contact_email"`
	Website       string `json:"website"`

	BankName          string `json:"bank_name"`
	BankAccountNumber string `json:"bank_account_number"`
	IfscCode          string `json:"ifsc_code"`

	PaymentTerms string `json:"payment_terms"`
	CreditLimit  string `json:"credit_limit"`

	Status string `json:"status"`
}

func (c *PlatformClient) CreateVendor(params VendorParams) (uuid.UUID, error) {
	var res struct {
		VendorId uuid.UUID `json:"vendor_id"`
	}
	err := c.Post("/api/v1/vendors").Json(params).Do(&res)
	return res.VendorId, err
}

func (c *PlatformClient) GetVendor(vendorId uuid.UUID) (services.VendorInfo, error) {
	var info services.VendorInfo
	err := c.Get(fmt.Sprintf("/api/v1/vendors/%v", vendorId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListVendors(filters map[string]string) ([]services.VendorInfo, error) {
	req := c.Get("/api/v1/vendors")
	for k, v := range filters {
		req = req.Param(k, v)
	}

	var vendors []services.VendorInfo
	err := req.Do(&vendors)
	return vendors, err
}

func (c *PlatformClient) UpdateVendor(vendorId uuid.UUID, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/api/v1/vendors/%v", vendorId)).Json(body).Do(nil)
}

func (c *PlatformClient) DeleteVendor(vendorId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/vendors/%v", vendorId)).Do(nil)
}

func (c *PlatformClient) CreateEmail(address, password, status string) (uuid.UUID, error) {
	body := map[string]string{
		"email_address": address, "email_password": password, "status": status,
	}

	var res struct {
		EmailId uuid.UUID `json:"email_id"`
	}
	err := c.Post("/api/v1/emails").Json(body).Do(&res)
	return res.EmailId, err
}

func (c *PlatformClient) GetEmail(emailId uuid.UUID) (services.EmailInfo, error) {
	var info services.EmailInfo
	err := c.Get(fmt.Sprintf("/api/v1/emails/%v", emailId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListEmails(activeOnly bool) ([]services.EmailInfo, error) {
	endpoint := "/api/v1/emails"
	if activeOnly {
		endpoint = "/api/v1/emails/active"
	}

	var emails []services.EmailInfo
	err := c.Get(endpoint).Do(&emails)
	return emails, err
}

func (c *PlatformClient) EmailCounts() (total, active int64, err error) {
	var res struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	}
	err = c.Get("/api/v1/emails/count").Do(&res)
	return res.Total, res.Active, err
}

func (c *PlatformClient) UpdateEmail(emailId uuid.UUID, changedFields map[string]string) error {
	body := map[string]interface{}{"changed_fields": changedFields}
	return c.Put(fmt.Sprintf("/api/v1/emails/%v", emailId)).Json(body).Do(nil)
}

// ForwardEmail sets the forwarding address for a mailbox, an empty address
// turns forwarding off.
func (c *PlatformClient) ForwardEmail(emailId uuid.UUID, forwardTo string) error {
	body := map[string]string{"forward_to": forwardTo}
	return c.Post(fmt.Sprintf("/api/v1/emails/%v/forward", emailId)).Json(body).Do(nil)
}

func (c *PlatformClient) AssignEmail(emailId, employeeId uuid.UUID) error {
	body := map[string]uuid.UUID{"employee_id": employeeId}
	return c.Post(fmt.Sprintf("/api/v1/emails/%v/assign", emailId)).Json(body).Do(nil)
}

func (c *PlatformClient) UnassignEmail(emailId, employeeId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/emails/%v/assign/%v", emailId, employeeId)).Do(nil)
}

func (c *PlatformClient) DeleteEmail(emailId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/emails/%v", emailId)).Do(nil)
}

type InvoiceParams struct {
	ReceivedName  string `json:"recieved_name"`
	InvoiceNumber string `json:"invoice_number"`

	InvoiceDate time.Time `json:"invoice_date"`

	Amount  float64 `json:"amount"`
	Purpose string  `json:"purpose"`

	VendorId *uuid.UUID `json:"vendor_id,omitempty"`
}

func (c *PlatformClient) CreateInvoice(params InvoiceParams) (uuid.UUID, error) {
	var res struct {
		InvoiceId uuid.UUID `json:"invoice_id"`
	}
	err := c.Post("/api/v1/invoices").Json(params).Do(&res)
	return res.InvoiceId, err
}

func (c *PlatformClient) GetInvoice(invoiceId uuid.UUID) (services.InvoiceInfo, error) {
	var info services.InvoiceInfo
	err := c.Get(fmt.Sprintf("/api/v1/invoices/%v", invoiceId)).Do(&info)
	return info, err
}

func (c *PlatformClient) ListInvoices(filters map[string]string) ([]services.InvoiceInfo, error) {
	req := c.Get("/api/v1/invoices")
	for k, v := range filters {
		req = req.Param(k, v)
	}

	var invoices []services.InvoiceInfo
	err := req.Do(&invoices)
	return invoices, err
}

func (c *PlatformClient) UploadInvoiceFile(invoiceId uuid.UUID, path string) error {
	body, contentType, err := fileUploadBody(path)
	if err != nil {
		return fmt.Errorf("error preparing invoice upload: %w", err)
	}

	return c.Post(fmt.Sprintf("/api/v1/invoices/%v/upload", invoiceId)).
		Header("Content-Type", contentType).
		Body(body).Do(nil)
}

func (c *PlatformClient) DownloadInvoiceFile(invoiceId uuid.UUID, dest io.Writer) error {
	return c.Get(fmt.Sprintf("/api/v1/invoices/%v/download", invoiceId)).Process(func(body io.Reader) error {
		_, err := io.Copy(dest, body)
		return err
	})
}

func (c *PlatformClient) DeleteInvoice(invoiceId uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/v1/invoices/%v", invoiceId)).Do(nil)
}

func (c *PlatformClient) AuditLogs(filters map[string]string, limit int) ([]services.LogEntry, error) {
	req := c.Get("/api/v1/logs")
	for k, v := range filters {
		req = req.Param(k, v)
	}
	if limit > 0 {
		req = req.Param("limit", fmt.Sprintf("%d", limit))
	}

	var entries []services.LogEntry
	err := req.Do(&entries)
	return entries, err
}

type Notice struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *PlatformClient) ComposeNotice(noticeType string, values map[string]string) (Notice, error) {
	req := c.Get(fmt.Sprintf("/api/v1/compose-email/%v", noticeType))
	for k, v := range values {
		req = req.Param(k, v)
	}

	var notice Notice
	err := req.Do(&notice)
	return notice, err
}
