package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/shareride-auth/internal/apperrors"
	"github.com/dtroode/shareride-auth/internal/mocks"
	"github.com/dtroode/shareride-auth/internal/model"
)

func registrationValues() url.Values {
	return url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"gender":     {"female"},
		"email":      {"ada@example.com"},
		"password":   {"secret1"},
	}
}

func TestAuth_Index(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthEngine(t, mocks.NewAuthService(t), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/login"`)
	assert.Contains(t, w.Body.String(), `href="/register"`)
}

func TestAuth_Forms(t *testing.T) {
	r := newAuthEngine(t, mocks.NewAuthService(t), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="password"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/register", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	for _, g := range model.Genders {
		assert.Contains(t, w.Body.String(), `<option value="`+string(g)+`"`)
	}
}

func TestAuth_Register_Success(t *testing.T) {
	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, model.RegisterParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Gender:    "female",
		Email:     "ada@example.com",
		Password:  "secret1",
	}).Return(model.User{ID: uuid.New()}, nil)

	w := httptest.NewRecorder()
	newAuthEngine(t, svc, nil).ServeHTTP(w, formRequest("/register", registrationValues()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.MsgRegistrationSucceeded)
	assert.Equal(t, "2; url=/login", w.Header().Get("Refresh"))
	assert.Empty(t, w.Result().Cookies(), "registration must not start a session")
}

func TestAuth_Register_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "validation", err: apperrors.NewErrValidation(apperrors.MsgPasswordTooShort), wantStatus: http.StatusBadRequest, wantMsg: apperrors.MsgPasswordTooShort},
		{name: "conflict", err: apperrors.NewErrEmailIsTaken(), wantStatus: http.StatusConflict, wantMsg: apperrors.MsgEmailTaken},
		{name: "infrastructure", err: apperrors.NewErrInternalServerError(errors.New(`relation "tbl_users" does not exist`)), wantStatus: http.StatusInternalServerError, wantMsg: apperrors.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewAuthService(t)
			svc.On("Register", mock.Anything, mock.Anything).Return(model.User{}, tt.err)

			w := httptest.NewRecorder()
			newAuthEngine(t, svc, nil).ServeHTTP(w, formRequest("/register", registrationValues()))

			body := w.Body.String()
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, body, tt.wantMsg)
			assert.NotContains(t, body, "tbl_users")
			assert.Empty(t, w.Header().Get("Refresh"))
			// Sticky fields are refilled, the password is not.
			assert.Contains(t, body, `value="Ada"`)
			assert.NotContains(t, body, "secret1")
		})
	}
}

func TestAuth_Login_Success(t *testing.T) {
	svc := mocks.NewAuthService(t)
	svc.On("Login", mock.Anything, model.LoginParams{
		Email:        "ada@example.com",
		Password:     "secret1",
		ClientIP:     "192.0.2.10",
		CurrentToken: "previous",
	}).Return(model.Session{Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}, nil)

	req := formRequest("/login", url.Values{"email": {"ada@example.com"}, "password": {"secret1"}})
	req.AddCookie(&http.Cookie{Name: "sr_session", Value: "previous"})

	w := httptest.NewRecorder()
	newAuthEngine(t, svc, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sr_session", cookies[0].Name)
	assert.Equal(t, "fresh", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, int((12 * time.Hour).Seconds()), cookies[0].MaxAge)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	svc := mocks.NewAuthService(t)
	svc.On("Login", mock.Anything, mock.Anything).Return(model.Session{}, apperrors.NewErrInvalidCredentials())

	w := httptest.NewRecorder()
	newAuthEngine(t, svc, nil).ServeHTTP(w, formRequest("/login", url.Values{"email": {"ada@example.com"}, "password": {"nope"}}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.MsgInvalidCredentials)
	assert.Equal(t, "2; url=/", w.Header().Get("Refresh"))
	assert.Empty(t, w.Result().Cookies())
}

func TestAuth_Login_Throttled(t *testing.T) {
	svc := mocks.NewAuthService(t)
	svc.On("Login", mock.Anything, mock.Anything).Return(model.Session{}, apperrors.NewErrTooManyAttempts(90*time.Second))

	w := httptest.NewRecorder()
	newAuthEngine(t, svc, nil).ServeHTTP(w, formRequest("/login", url.Values{"email": {"ada@example.com"}, "password": {"nope"}}))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Empty(t, w.Header().Get("Refresh"))
	assert.Contains(t, w.Body.String(), apperrors.MsgTooManyAttempts)
}

func TestAuth_Login_Validation(t *testing.T) {
	svc := mocks.NewAuthService(t)
	svc.On("Login", mock.Anything, mock.Anything).Return(model.Session{}, apperrors.NewErrValidation(apperrors.MsgCredentialsRequired))

	w := httptest.NewRecorder()
	newAuthEngine(t, svc, nil).ServeHTTP(w, formRequest("/login", url.Values{"email": {""}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.MsgCredentialsRequired)
}

func TestAuth_Home(t *testing.T) {
	t.Run("with session", func(t *testing.T) {
		session := &model.Session{Token: "tok", SessionData: model.SessionData{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}}

		w := httptest.NewRecorder()
		newAuthEngine(t, mocks.NewAuthService(t), session).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hello, Ada Lovelace")
		assert.Contains(t, w.Body.String(), "ada@example.com")
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})

	t.Run("without session", func(t *testing.T) {
		w := httptest.NewRecorder()
		newAuthEngine(t, mocks.NewAuthService(t), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.NotContains(t, w.Body.String(), "Hello")
	})
}

func TestAuth_Logout(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			svc := mocks.NewAuthService(t)
			svc.On("Logout", mock.Anything, "tok").Return(nil)

			req := httptest.NewRequest(method, "/logout", nil)
			req.AddCookie(&http.Cookie{Name: "sr_session", Value: "tok"})

			w := httptest.NewRecorder()
			newAuthEngine(t, svc, nil).ServeHTTP(w, req)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Negative(t, cookies[0].MaxAge)
		})
	}

	t.Run("without session", func(t *testing.T) {
		svc := mocks.NewAuthService(t)
		svc.On("Logout", mock.Anything, "").Return(nil)

		w := httptest.NewRecorder()
		newAuthEngine(t, svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("store failure still clears the cookie", func(t *testing.T) {
		svc := mocks.NewAuthService(t)
		svc.On("Logout", mock.Anything, "tok").Return(apperrors.NewErrInternalServerError(errors.New("down")))

		req := httptest.NewRequest(http.MethodGet, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: "sr_session", Value: "tok"})

		w := httptest.NewRecorder()
		newAuthEngine(t, svc, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		require.Len(t, w.Result().Cookies(), 1)
	})
}
