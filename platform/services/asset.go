package services

import (
	"errors"
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/platform/catalog"
	"itam_platform/platform/schema"
	"itam_platform/utils"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *AssetService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Get("/hostnames", s.Hostnames)
	r.Post("/swap-hostnames", s.SwapHostnames)

	r.Get("/categories", s.Categories)

	r.Route("/{category}", func(r chi.Router) {
		r.Get("/", s.ListCategory)
		r.Post("/", s.Create)

		r.Get("/{asset_id}", s.Get)
		r.Put("/{asset_id}", s.Update)

		r.With(auth.AdminOnly(s.db)).Delete("/{asset_id}", s.Delete)
	})

	return r
}

type AssetInfo struct {
	Id       uuid.UUID         `json:"id"`
	Category catalog.Category  `json:"category"`
	Fields   map[string]string `json:"fields"`

	AllotedUserName string   `json:"alloted_user_name"`
	CurrentHolder   string   `json:"current_holder"`
	PreviousHolders []string `json:"previous_holders"`
}

// Secret attributes are masked on the way out unless the caller asks for a
// reveal, which the frontend only does after the master password check.
func maskSecrets(category catalog.Category, fields map[string]string) {
	for key, value := range fields {
		if value == "" {
			continue
		}
		rule, err := catalog.RenderRuleFor(category, key)
		if err != nil {
			continue
		}
		if rule.Kind == catalog.MaskedSecret {
			fields[key] = catalog.Mask
		}
	}
}

func convertToAssetInfo(asset *schema.Asset, reveal bool) AssetInfo {
	fields := asset.GetAttributes()
	fields["HostName"] = asset.HostName
	fields["Brand"] = asset.Brand
	fields["Model"] = asset.Model
	fields["SerialNo"] = asset.SerialNo
	fields["Status"] = asset.Status
	fields["Location"] = asset.Location

	if !reveal {
		maskSecrets(catalog.Category(asset.Category), fields)
	}

	allotment := catalog.ParseAllotment(asset.AllotedUserName)

	return AssetInfo{
		Id:              asset.Id,
		Category:        catalog.Category(asset.Category),
		Fields:          fields,
		AllotedUserName: asset.AllotedUserName,
		CurrentHolder:   allotment.Current,
		PreviousHolders: allotment.Previous,
	}
}

func (s *AssetService) listAssets(w http.ResponseWriter, r *http.Request, category string) {
	query := s.db.Preload("Attributes")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if location := r.URL.Query().Get("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var assets []schema.Asset
	result := query.Order("host_name").Find(&assets)
	if result.Error != nil {
		slog.Error("sql error listing assets", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]AssetInfo, 0, len(assets))
	for i := range assets {
		infos = append(infos, convertToAssetInfo(&assets[i], false))
	}

	utils.WriteJsonResponse(w, infos)
}

func (s *AssetService) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" {
		if _, err := catalog.ParseCategory(category); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}
	s.listAssets(w, r, category)
}

func (s *AssetService) ListCategory(w http.ResponseWriter, r *http.Request) {
	category, err := urlParamCategory(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.listAssets(w, r, string(category))
}

type CategoryInfo struct {
	Name     catalog.Category        `json:"name"`
	Fields   []string                `json:"fields"`
	Defaults map[string]string       `json:"defaults"`
	Rules    map[string]catalog.Rule `json:"rules"`
}

func (s *AssetService) Categories(w http.ResponseWriter, r *http.Request) {
	infos := make([]CategoryInfo, 0, len(catalog.Categories()))
	for _, category := range catalog.Categories() {
		fields, err := catalog.FieldsFor(category)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defaults, err := catalog.DefaultsFor(category)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		rules := make(map[string]catalog.Rule, len(fields))
		for _, field := range fields {
			rule, err := catalog.RenderRuleFor(category, field)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			rules[field] = rule
		}

		infos = append(infos, CategoryInfo{Name: category, Fields: fields, Defaults: defaults, Rules: rules})
	}
	utils.WriteJsonResponse(w, infos)
}

func urlParamCategory(r *http.Request) (catalog.Category, error) {
	param, err := utils.URLParam(r, "category")
	if err != nil {
		return "", err
	}
	return catalog.ParseCategory(param)
}

// baseColumn maps the shared fields onto asset columns, everything else is
// stored as a key/value attribute row.
func baseColumn(asset *schema.Asset, key, value string) bool {
	switch key {
	case "HostName":
		asset.HostName = value
	case "Brand":
		asset.Brand = value
	case "Model":
		asset.Model = value
	case "SerialNo":
		asset.SerialNo = value
	case "Status":
		asset.Status = value
	case "Location":
		asset.Location = value
	default:
		return false
	}
	return true
}

func validateFields(category catalog.Category, fields map[string]string) error {
	allowed, err := catalog.FieldsFor(category)
	if err != nil {
		return CodedError(err, http.StatusNotFound)
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = true
	}

	for key := range fields {
		if !allowedSet[key] {
			return CodedError(fmt.Errorf("field '%v' is not part of the %v field set", key, category), http.StatusUnprocessableEntity)
		}
	}
	return nil
}

func validateSelects(category catalog.Category, fields map[string]string) error {
	for key, value := range fields {
		if value == "" {
			continue
		}
		rule, err := catalog.RenderRuleFor(category, key)
		if err != nil {
			return CodedError(err, http.StatusNotFound)
		}
		if rule.Kind != catalog.BoundedSelect {
			continue
		}
		ok := false
		for _, option := range rule.Options {
			if option == value {
				ok = true
				break
			}
		}
		if !ok {
			return CodedError(fmt.Errorf("'%v' is not a valid option for field '%v'", value, key), http.StatusUnprocessableEntity)
		}
	}
	return nil
}

type createAssetRequest struct {
	Fields          map[string]string `json:"fields"`
	AllotedUserName string            `json:"alloted_user_name"`
}

type createAssetResponse struct {
	AssetId uuid.UUID `json:"asset_id"`
}

func (s *AssetService) Create(w http.ResponseWriter, r *http.Request) {
	category, err := urlParamCategory(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var params createAssetRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := validateFields(category, params.Fields); err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}
	if err := validateSelects(category, params.Fields); err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	defaults, err := catalog.DefaultsFor(category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	for key, value := range params.Fields {
		defaults[key] = value
	}

	now := time.Now().UTC()
	asset := schema.Asset{
		Id:              uuid.New(),
		Category:        string(category),
		AllotedUserName: catalog.Reassign("", params.AllotedUserName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	attrs := make([]schema.AssetAttribute, 0, len(defaults))
	for key, value := range defaults {
		if baseColumn(&asset, key, value) {
			continue
		}
		attrs = append(attrs, schema.AssetAttribute{AssetId: asset.Id, Key: key, Value: value})
	}
	asset.Attributes = attrs

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Create(&asset)
		if result.Error != nil {
			slog.Error("sql error creating asset", "category", category, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "assets", "Create", asset.Id.String(), string(category))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating asset: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createAssetResponse{AssetId: asset.Id})
}

func (s *AssetService) getCategoryAsset(r *http.Request) (schema.Asset, error) {
	category, err := urlParamCategory(r)
	if err != nil {
		return schema.Asset{}, CodedError(err, http.StatusNotFound)
	}

	assetId, err := utils.URLParamUUID(r, "asset_id")
	if err != nil {
		return schema.Asset{}, CodedError(err, http.StatusBadRequest)
	}

	asset, err := schema.GetAsset(assetId, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrAssetNotFound) {
			return schema.Asset{}, CodedError(err, http.StatusNotFound)
		}
		return schema.Asset{}, CodedError(err, http.StatusInternalServerError)
	}

	if asset.Category != string(category) {
		return schema.Asset{}, CodedError(fmt.Errorf("asset %v is not in category %v", assetId, category), http.StatusNotFound)
	}

	return asset, nil
}

func (s *AssetService) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := s.getCategoryAsset(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	reveal := r.URL.Query().Get("reveal") == "true"
	utils.WriteJsonResponse(w, convertToAssetInfo(&asset, reveal))
}

type updateAssetRequest struct {
	// Only the fields that changed, per the edit screen's diff. An empty
	// map is rejected as a no-op.
	ChangedFields map[string]string `json:"changed_fields"`

	AllotedUserName *string `json:"alloted_user_name,omitempty"`
}

func (s *AssetService) Update(w http.ResponseWriter, r *http.Request) {
	asset, err := s.getCategoryAsset(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params updateAssetRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(params.ChangedFields) == 0 && params.AllotedUserName == nil {
		http.Error(w, ErrNoChanges.Error(), http.StatusUnprocessableEntity)
		return
	}

	for _, immutable := range []string{"AssetsId", "Id", "Category"} {
		if _, ok := params.ChangedFields[immutable]; ok {
			http.Error(w, fmt.Sprintf("field '%v' cannot be updated", immutable), http.StatusUnprocessableEntity)
			return
		}
	}

	category := catalog.Category(asset.Category)
	if err := validateFields(category, params.ChangedFields); err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}
	if err := validateSelects(category, params.ChangedFields); err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		for key, value := range params.ChangedFields {
			if baseColumn(&asset, key, value) {
				continue
			}
			attr := schema.AssetAttribute{AssetId: asset.Id, Key: key, Value: value}
			result := txn.Save(&attr)
			if result.Error != nil {
				slog.Error("sql error updating asset attribute", "asset_id", asset.Id, "key", key, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}

		if params.AllotedUserName != nil {
			asset.AllotedUserName = catalog.Reassign(asset.AllotedUserName, *params.AllotedUserName)
		}
		asset.UpdatedAt = time.Now().UTC()

		result := txn.Omit("Attributes").Save(&asset)
		if result.Error != nil {
			slog.Error("sql error updating asset", "asset_id", asset.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "assets", "Update", asset.Id.String(), fmt.Sprintf("%v fields changed", len(params.ChangedFields)))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating asset: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *AssetService) Delete(w http.ResponseWriter, r *http.Request) {
	asset, err := s.getCategoryAsset(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Select("Attributes").Delete(&schema.Asset{Id: asset.Id})
		if result.Error != nil {
			slog.Error("sql error deleting asset", "asset_id", asset.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "assets", "Delete", asset.Id.String(), asset.Category)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting asset: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

type HostnameInfo struct {
	AssetId  uuid.UUID `json:"asset_id"`
	HostName string    `json:"host_name"`
	Category string    `json:"category"`
}

func (s *AssetService) Hostnames(w http.ResponseWriter, r *http.Request) {
	var assets []schema.Asset
	result := s.db.Select("id", "host_name", "category").Order("host_name").Find(&assets)
	if result.Error != nil {
		slog.Error("sql error listing hostnames", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]HostnameInfo, 0, len(assets))
	for _, asset := range assets {
		infos = append(infos, HostnameInfo{AssetId: asset.Id, HostName: asset.HostName, Category: asset.Category})
	}

	utils.WriteJsonResponse(w, infos)
}

type swapHostnamesRequest struct {
	AssetId1 uuid.UUID `json:"asset_id_1"`
	AssetId2 uuid.UUID `json:"asset_id_2"`
}

// SwapHostnames exchanges the hostnames of two assets in one transaction,
// used when a machine is rebuilt under another machine's name.
func (s *AssetService) SwapHostnames(w http.ResponseWriter, r *http.Request) {
	var params swapHostnamesRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.AssetId1 == params.AssetId2 {
		http.Error(w, "cannot swap hostnames of an asset with itself", http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		first, err := schema.GetAsset(params.AssetId1, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrAssetNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		second, err := schema.GetAsset(params.AssetId2, txn, false)
		if err != nil {
			if errors.Is(err, schema.ErrAssetNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		first.HostName, second.HostName = second.HostName, first.HostName
		now := time.Now().UTC()
		first.UpdatedAt, second.UpdatedAt = now, now

		for _, asset := range []*schema.Asset{&first, &second} {
			result := txn.Omit("Attributes").Save(asset)
			if result.Error != nil {
				slog.Error("sql error swapping hostnames", "asset_id", asset.Id, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
		}

		info := fmt.Sprintf("%v <-> %v", first.HostName, second.HostName)
		return recordAction(txn, user.Username, "assets", "SwapHostnames", params.AssetId1.String(), info)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error swapping hostnames: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
