package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat090803/ecommerce-final-project/internal/config"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
)

func newSessions() *CartSessions {
	log, _ := test.NewNullLogger()
	return NewCartSessions(cart.NewMemoryPersister(), &config.Config{
		Cart:     config.CartConfig{SessionTTL: 2 * time.Hour, CookieName: "sid"},
		Security: config.SecurityConfig{SecureCookies: true},
	}, log)
}

func TestCartSessions_IssuesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)

	store, err := newSessions().Open(c)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, store.SessionID(), cookies[0].Value)
	assert.Equal(t, 7200, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSessions_ReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)
	c.Request.AddCookie(&http.Cookie{Name: "sid", Value: "existing"})

	store, err := newSessions().Open(c)
	require.NoError(t, err)
	assert.Equal(t, "existing", store.SessionID())
}

func TestCartSessions_OpenExistingDoesNotIssueCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout", nil)

	store, err := newSessions().OpenExisting(c)
	require.NoError(t, err)
	assert.True(t, store.IsEmpty())
	assert.Empty(t, w.Result().Cookies())
}
