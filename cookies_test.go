package steam

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStoreDomainIsolation(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	store.set("store.example.com", &http.Cookie{Name: "sessionid", Value: "store-value"})
	store.set("community.example.com", &http.Cookie{Name: "sessionid", Value: "community-value"})

	assert.Equal(t, "store-value", store.get("store.example.com", "sessionid"))
	assert.Equal(t, "community-value", store.get("community.example.com", "sessionid"))

	header := store.header("store.example.com")
	assert.Contains(t, header, "store-value")
	assert.NotContains(t, header, "community-value")

	assert.Empty(t, store.get("other.example.com", "sessionid"))
}

func TestCookieStoreReplaceSameName(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	store.set("steamcommunity.com", &http.Cookie{Name: "sessionid", Value: "old"})
	store.set("steamcommunity.com", &http.Cookie{Name: "sessionid", Value: "new"})

	cookies := store.cookies("steamcommunity.com")
	require.Len(t, cookies, 1)
	assert.Equal(t, "new", cookies[0].Value)
}

func TestCookieStoreNormalizesDomain(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	store.set(".SteamCommunity.com", &http.Cookie{Name: "a", Value: "1"})
	assert.Equal(t, "1", store.get("steamcommunity.com", "a"))
}

func TestCookieStoreCapture(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	u, err := url.Parse("https://steamcommunity.com/login")
	require.NoError(t, err)

	store.capture(u, []*http.Cookie{
		{Name: "sessionid", Value: "abc"},
		{Name: "scoped", Value: "xyz", Domain: ".store.steampowered.com"},
	})

	assert.Equal(t, "abc", store.get("steamcommunity.com", "sessionid"))
	assert.Equal(t, "xyz", store.get("store.steampowered.com", "scoped"))
	assert.Empty(t, store.get("steamcommunity.com", "scoped"))
}

func TestCookieStoreCaptureExpiry(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	u, err := url.Parse("https://steamcommunity.com/")
	require.NoError(t, err)

	store.set("steamcommunity.com", &http.Cookie{Name: "mobileClient", Value: "android"})
	store.capture(u, []*http.Cookie{{Name: "mobileClient", Value: "", MaxAge: -1}})

	assert.Empty(t, store.get("steamcommunity.com", "mobileClient"))
}

func TestCookieStoreCopiesOnRead(t *testing.T) {
	t.Parallel()

	store := newCookieStore()
	store.set("steamcommunity.com", &http.Cookie{Name: "a", Value: "1"})

	cookies := store.cookies("steamcommunity.com")
	cookies[0].Value = "mutated"

	assert.Equal(t, "1", store.get("steamcommunity.com", "a"))
}
