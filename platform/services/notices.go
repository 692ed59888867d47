package services

import (
	_ "embed"
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/utils"
	"net/http"
	"strings"
	"text/template"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed notices.yaml
var noticeTemplatesYaml []byte

type noticeTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

func loadNoticeTemplates() (map[string]noticeTemplate, error) {
	templates := map[string]noticeTemplate{}
	if err := yaml.Unmarshal(noticeTemplatesYaml, &templates); err != nil {
		return nil, fmt.Errorf("error parsing notice templates: %w", err)
	}
	return templates, nil
}

// NoticeService renders the canned emails operators send from the
// dashboard, sim card data-usage warnings and bill approvals mostly. The
// text is returned to the caller; sending is up to the operator's mail
// client.
type NoticeService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider

	templates map[string]noticeTemplate
}

func (s *NoticeService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/{notice_type}", s.Compose)

	return r
}

type composeNoticeResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *NoticeService) Compose(w http.ResponseWriter, r *http.Request) {
	noticeType, err := utils.URLParam(r, "notice_type")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl, ok := s.templates[noticeType]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown notice type '%v'", noticeType), http.StatusNotFound)
		return
	}

	values := map[string]string{}
	for key, value := range r.URL.Query() {
		values[key] = strings.Join(value, " ")
	}

	subject, err := renderNotice(tmpl.Subject, values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := renderNotice(tmpl.Body, values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJsonResponse(w, composeNoticeResponse{Subject: subject, Body: body})
}

func renderNotice(text string, values map[string]string) (string, error) {
	tmpl, err := template.New("notice").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("error parsing notice template: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, values); err != nil {
		return "", fmt.Errorf("error rendering notice template: %w", err)
	}
	return out.String(), nil
}
