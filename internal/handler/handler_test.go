package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/metrics"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct-horse-battery"
)

type envelope struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Fields    map[string]string `json:"fields"`
	Data      json.RawMessage   `json:"data"`
}

// HandlerSuite serves the full router over seeded in-memory registries.
type HandlerSuite struct {
	suite.Suite
	router   *gin.Engine
	tokens   *utils.TokenIssuer
	auth     *service.AuthService
	adminTok string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	reg := repository.NewMemoryRegistries()
	_, err := repository.SeedIfEmpty(ctx, reg)
	s.Require().NoError(err)

	tr, err := i18n.New("en")
	s.Require().NoError(err)
	v, ok := binding.Validator.Engine().(*validator.Validate)
	s.Require().True(ok)
	s.Require().NoError(tr.RegisterValidator(v))

	m := metrics.New(prometheus.NewRegistry())
	s.tokens = utils.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	s.auth = service.NewAuthService(reg, s.tokens)
	created, err := s.auth.EnsureAdmin(ctx, adminEmail, adminPassword)
	s.Require().NoError(err)
	s.Require().True(created)

	citizens := service.NewCitizenService(reg, 10)
	cards := service.NewCardService(reg, m, 10)
	institutions := service.NewInstitutionService(reg, m, 10)
	svc := Services{
		Auth:         s.auth,
		Citizens:     citizens,
		Cards:        cards,
		Institutions: institutions,
		Dashboard:    service.NewDashboardService(reg),
		Reports:      service.NewReportService(reg),
		Forms:        service.NewFormService(citizens, cards, institutions, m, zap.NewNop(), time.Hour, 0),
		Terminals:    service.NewTerminalService(reg, cards),
	}
	s.router = NewRouter(svc, s.tokens, tr, m, zap.NewNop(), RouterConfig{RefreshMaxAge: 3600})

	s.adminTok, err = s.tokens.GenerateAccessToken(1, adminEmail, "admin")
	s.Require().NoError(err)
}

func (s *HandlerSuite) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (s *HandlerSuite) data(w *httptest.ResponseRecorder, out any) {
	env := s.decode(w)
	s.Require().NoError(json.Unmarshal(env.Data, out), string(env.Data))
}

func (s *HandlerSuite) operatorToken(id uint) string {
	tok, err := s.tokens.GenerateAccessToken(id, fmt.Sprintf("op%d@example.com", id), "operator")
	s.Require().NoError(err)
	return tok
}

func (s *HandlerSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(s.decode(w).Success)
}

func (s *HandlerSuite) TestAPIRequiresToken() {
	w := s.do(http.MethodGet, "/api/citizens", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Authentication required", s.decode(w).Error)

	w = s.do(http.MethodGet, "/api/citizens", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestLoginRefreshLogout() {
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "not-an-email", "password": "x"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(s.decode(w).Fields, "email")

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": adminPassword})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	s.data(w, &login)
	s.NotEmpty(login.AccessToken)
	s.Equal("admin", login.User.Role)

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(refreshCookie, cookies[0].Name)
	s.True(cookies[0].HttpOnly)

	w = s.do(http.MethodGet, "/auth/me", login.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), adminEmail)

	cookie := refreshCookie + "=" + cookies[0].Value
	w = s.do(http.MethodPost, "/auth/refresh", "", nil, "Cookie", cookie)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/auth/logout", "", nil, "Cookie", cookie)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Logged out successfully", s.decode(w).Message)

	w = s.do(http.MethodPost, "/auth/refresh", "", nil, "Cookie", cookie)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestCreateUserIsAdminOnly() {
	body := gin.H{"email": "clerk@example.com", "password": "long-enough-pass", "role": "operator"}
	w := s.do(http.MethodPost, "/auth/users", s.operatorToken(2), body)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/auth/users", s.adminTok, body)
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/auth/users", s.adminTok, body)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(s.decode(w).Fields, "email")
}

func (s *HandlerSuite) TestCitizenListFiltersAndPages() {
	w := s.do(http.MethodGet, "/api/citizens?q=ahmed", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Total int `json:"total"`
		Page  int `json:"page"`
	}
	s.data(w, &page)
	s.Equal(2, page.Total)
	s.Equal(1, page.Page)

	w = s.do(http.MethodGet, "/api/citizens?colour=red", s.adminTok, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/citizens?page=99&lang=en", s.adminTok, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/citizens?q=ahmed&colour=&page=99", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.data(w, &page)
	s.Equal(2, page.Total)
	s.Equal(1, page.Page)
}

func (s *HandlerSuite) TestCitizenSearchStates() {
	var result struct {
		State   string `json:"state"`
		Matches []struct {
			Name string `json:"name"`
		} `json:"matches"`
	}

	s.data(s.do(http.MethodGet, "/api/citizens/search?q=", s.adminTok, nil), &result)
	s.Equal("no_query", result.State)

	s.data(s.do(http.MethodGet, "/api/citizens/search?q=zzz", s.adminTok, nil), &result)
	s.Equal("no_match", result.State)

	s.data(s.do(http.MethodGet, "/api/citizens/search?q=sara", s.adminTok, nil), &result)
	s.Equal("results", result.State)
	s.Require().Len(result.Matches, 1)
	s.Equal("Sara Ahmed", result.Matches[0].Name)
}

func (s *HandlerSuite) TestCitizenNotFoundIsLocalized() {
	w := s.do(http.MethodGet, "/api/citizens/999", s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Citizen not found", s.decode(w).Error)
	s.Equal("en", w.Header().Get("Content-Language"))

	w = s.do(http.MethodGet, "/api/citizens/999?lang=ar", s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("ar", w.Header().Get("Content-Language"))
	s.NotEqual("Citizen not found", s.decode(w).Error)

	w = s.do(http.MethodGet, "/api/citizens/abc", s.adminTok, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestCitizenCreateReportsFieldViolations() {
	body := gin.H{"values": gin.H{"nationalId": "2901234567890", "name": "Yo"}}
	w := s.do(http.MethodPost, "/api/citizens", s.adminTok, body)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	env := s.decode(w)
	s.Equal("National ID must be 14 digits", env.Fields["nationalId"])
	s.Equal("Name must be at least 3 characters", env.Fields["name"])
}

func (s *HandlerSuite) TestCitizenDeleteIsAdminOnly() {
	w := s.do(http.MethodDelete, "/api/citizens/5", s.operatorToken(2), nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/citizens/5", s.adminTok, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/citizens/5", s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestCardDetailAndTransitions() {
	var card struct {
		Status  string `json:"status"`
		Actions []struct {
			Action  string `json:"action"`
			Enabled bool   `json:"enabled"`
		} `json:"actions"`
	}
	s.data(s.do(http.MethodGet, "/api/cards/4", s.adminTok, nil), &card)
	s.Equal("Expired", card.Status)
	enabled := map[string]bool{}
	for _, a := range card.Actions {
		enabled[a.Action] = a.Enabled
	}
	s.True(enabled["renew"])
	s.False(enabled["suspend"])

	w := s.do(http.MethodPost, "/api/cards/4/actions/suspend", s.adminTok, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("This action is not available for the card's current status", s.decode(w).Error)

	w = s.do(http.MethodPost, "/api/cards/4/actions/explode", s.adminTok, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/cards/1/actions/print", s.adminTok, nil)
	s.Equal(http.StatusOK, w.Code)
	var printed struct {
		Message string `json:"message"`
	}
	s.data(w, &printed)
	s.Equal("Card sent to printer", printed.Message)

	w = s.do(http.MethodPost, "/api/cards/999/actions/print", s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestCardUsageRequiresActiveCard() {
	body := gin.H{"institutionId": 1, "service": "Emergency Care"}
	w := s.do(http.MethodPost, "/api/cards/4/usage", s.adminTok, body)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/cards/1/usage", s.adminTok, gin.H{"service": "Emergency Care"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerSuite) TestInstitutionDestructiveAction() {
	w := s.do(http.MethodPost, "/api/institutions/5/actions/suspend", s.adminTok, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/institutions/5/actions/delete", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var res struct {
		Removed bool `json:"removed"`
	}
	s.data(w, &res)
	s.True(res.Removed)

	w = s.do(http.MethodGet, "/api/institutions/5", s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestDashboardRendersAlerts() {
	w := s.do(http.MethodGet, "/api/dashboard", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var dash struct {
		Stats struct {
			TotalCitizens int `json:"totalCitizens"`
		} `json:"stats"`
		Alerts []struct {
			Key     string `json:"key"`
			Message string `json:"message"`
		} `json:"alerts"`
	}
	s.data(w, &dash)
	s.Equal(5, dash.Stats.TotalCitizens)
	for _, a := range dash.Alerts {
		s.NotEmpty(a.Message, a.Key)
		s.NotEqual(a.Key, a.Message)
	}
}

func (s *HandlerSuite) TestReportExport() {
	w := s.do(http.MethodGet, "/api/reports/export", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(xlsxContentType, w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	s.Equal("PK", w.Body.String()[:2])

	w = s.do(http.MethodGet, "/api/reports/cards", s.adminTok, nil)
	s.Equal(http.StatusOK, w.Code)
}

type formState struct {
	ID        string            `json:"id"`
	Step      int               `json:"step"`
	Values    map[string]string `json:"values"`
	StepValid bool              `json:"stepValid"`
	Picker    *struct {
		State   string `json:"state"`
		Matches []struct {
			ID uint `json:"id"`
		} `json:"matches"`
	} `json:"picker"`
	Submission struct {
		Status string `json:"status"`
	} `json:"submission"`
	NavigateTo *struct {
		Path string `json:"path"`
		Back bool   `json:"back"`
	} `json:"navigateTo"`
}

func (s *HandlerSuite) TestCardFormOverHTTP() {
	w := s.do(http.MethodPost, "/api/forms/card?id=1", s.adminTok, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var st formState
	s.data(w, &st)
	s.Equal("Ahmed Mohamed", st.Values["citizenName"])
	base := "/api/forms/" + st.ID

	w = s.do(http.MethodPost, base+"/submit", s.adminTok, nil)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	env := s.decode(w)
	s.Equal("This citizen already holds an active card", env.Fields["citizenId"])

	s.data(s.do(http.MethodGet, base+"/citizens?q=fatima", s.adminTok, nil), &st)
	s.Require().NotNil(st.Picker)
	s.Equal("results", st.Picker.State)
	s.Require().Len(st.Picker.Matches, 1)

	w = s.do(http.MethodPost, base+"/citizens/2", s.adminTok, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Select a citizen from the current search results", s.decode(w).Error)

	w = s.do(http.MethodPost, fmt.Sprintf("%s/citizens/%d", base, st.Picker.Matches[0].ID), s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, base+"/submit", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.data(w, &st)
	s.Equal("succeeded", st.Submission.Status)

	w = s.do(http.MethodPost, base+"/submit", s.adminTok, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, base, s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.data(w, &st)
	s.Require().NotNil(st.NavigateTo)
	s.True(st.NavigateTo.Back)

	w = s.do(http.MethodGet, base, s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestCitizenFormStepsOverHTTP() {
	var st formState
	w := s.do(http.MethodPost, "/api/forms/citizen", s.adminTok, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.data(w, &st)
	base := "/api/forms/" + st.ID
	s.False(st.StepValid)

	w = s.do(http.MethodPost, base+"/submit", s.adminTok, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, base+"/fields/nationalId", s.adminTok, gin.H{"value": "2901234567890"})
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodPost, base+"/blur/nationalId", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "citizens.nationalId.digits")

	w = s.do(http.MethodPut, base+"/fields/shoeSize", s.adminTok, gin.H{"value": "44"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, base+"/retreat", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.data(w, &st)
	s.Equal(0, st.Step)
}

func (s *HandlerSuite) TestFormSessionsBelongToTheirOpener() {
	owner := s.operatorToken(7)
	w := s.do(http.MethodPost, "/api/forms/institution", owner, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var st formState
	s.data(w, &st)
	base := "/api/forms/" + st.ID

	w = s.do(http.MethodGet, base, s.operatorToken(8), nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, base, owner, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, base, s.adminTok, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, base+"/citizens?q=sara", owner, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/forms/nope", owner, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestTerminalKeyLifecycle() {
	w := s.do(http.MethodPost, "/api/institutions/1/terminal-keys", s.operatorToken(2), gin.H{"description": "Front desk"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/institutions/1/terminal-keys", s.adminTok, gin.H{"description": "Front desk"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Key struct {
			ID  uint   `json:"id"`
			Key string `json:"key"`
		} `json:"key"`
	}
	s.data(w, &created)
	s.Require().NotEmpty(created.Key.Key)

	tap := gin.H{"cardNumber": "NFC-2023-001", "service": "Emergency Care"}
	w = s.do(http.MethodPost, "/terminal/institutions/1/taps", "", tap)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("API key is required in X-API-Key header", s.decode(w).Error)

	w = s.do(http.MethodPost, "/terminal/institutions/2/taps", "", tap, "X-API-Key", created.Key.Key)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/terminal/institutions/1/taps", "", tap, "X-API-Key", created.Key.Key)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "Ahmed Mohamed")

	w = s.do(http.MethodPost, "/terminal/institutions/1/taps", "",
		gin.H{"cardNumber": "NFC-1999-999", "service": "Lab"}, "X-API-Key", created.Key.Key)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/institutions/1/terminal-keys", s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), created.Key.Key)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/terminal-keys/%d/revoke", created.Key.ID), s.adminTok, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/terminal/institutions/1/taps", "", tap, "X-API-Key", created.Key.Key)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/terminal-keys/%d", created.Key.ID), s.adminTok, nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/terminal-keys/%d", created.Key.ID), s.adminTok, nil)
	s.Equal(http.StatusNotFound, w.Code)
}
