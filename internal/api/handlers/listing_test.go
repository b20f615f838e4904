package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupAndLogin(t *testing.T, ts *testutil.TestServer, username string) {
	t.Helper()

	resp := ts.PostForm(t, "/signup", signupForm(username, username+"@example.com", "password123"))
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/listings", resp.Header.Get("Location"))
}

func logout(t *testing.T, ts *testutil.TestServer) {
	t.Helper()

	resp := ts.Get(t, "/logout")
	resp.Body.Close()
}

// send issues a request with an arbitrary method through the jar-backed
// no-redirect client, for the PUT/DELETE routes.
func send(t *testing.T, ts *testutil.TestServer, method, path string, form url.Values) *http.Response {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequest(method, ts.URL(path), body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := ts.NoRedirect.Do(req)
	require.NoError(t, err)
	return resp
}

func listingByTitle(t *testing.T, ts *testutil.TestServer, title string) *domain.Listing {
	t.Helper()

	var listing domain.Listing
	require.NoError(t, ts.DB.First(&listing, "title = ?", title).Error)
	return &listing
}

func TestListingHandler_CreateRequiresLogin(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := ts.PostForm(t, "/listings", url.Values{"title": {"drive-by"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	body := decodeBody(t, ts.Get(t, "/login"))
	assert.Contains(t, flashOf(t, body, "error"), "You must be logged in!")

	var count int64
	require.NoError(t, ts.DB.Model(&domain.Listing{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListingHandler_CreateWithoutImageUsesPlaceholder(t *testing.T) {
	ts := testutil.NewTestServer(t)
	signupAndLogin(t, ts, "hostuser")

	resp := ts.PostForm(t, "/listings", url.Values{
		"title":       {"seaside shack"},
		"description": {"salt air included"},
		"price":       {"120"},
		"location":    {"mirissa"},
		"country":     {"sri lanka"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))

	listing := listingByTitle(t, ts, "seaside shack")
	assert.Equal(t, domain.DefaultImage, listing.Image.Data())
	assert.Equal(t, 120, listing.Price)
	assert.NotEqual(t, uuid.Nil, listing.OwnerID)

	body := decodeBody(t, ts.Get(t, "/listings"))
	assert.Contains(t, flashOf(t, body, "success"), "New listing created successfully!")
}

func TestListingHandler_CreateValidation(t *testing.T) {
	ts := testutil.NewTestServer(t)
	signupAndLogin(t, ts, "hostuser")

	tests := []struct {
		name      string
		form      url.Values
		wantError string
	}{
		{
			name:      "missing title",
			form:      url.Values{"price": {"50"}},
			wantError: "Title is required!",
		},
		{
			name:      "negative price",
			form:      url.Values{"title": {"bad price"}, "price": {"-5"}},
			wantError: "Price must be a non-negative number!",
		},
		{
			name:      "non-numeric price",
			form:      url.Values{"title": {"bad price"}, "price": {"cheap"}},
			wantError: "Price must be a non-negative number!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.PostForm(t, "/listings", tt.form)
			resp.Body.Close()
			assert.Equal(t, "/listings/new", resp.Header.Get("Location"))

			body := decodeBody(t, ts.Get(t, "/listings/new"))
			assert.Contains(t, flashOf(t, body, "error"), tt.wantError)
		})
	}
}

func TestListingHandler_ShowMissingSoftFails(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := ts.Get(t, "/listings/"+uuid.NewString())
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))

	body := decodeBody(t, ts.Get(t, "/listings"))
	assert.Contains(t, flashOf(t, body, "error"), "Listing not found!")

	// A malformed identifier takes the same soft path.
	resp = ts.Get(t, "/listings/not-a-uuid")
	resp.Body.Close()
	assert.Equal(t, "/listings", resp.Header.Get("Location"))
}

func TestListingHandler_UpdateRejectsNonOwner(t *testing.T) {
	ts := testutil.NewTestServer(t)

	signupAndLogin(t, ts, "owneruser")
	resp := ts.PostForm(t, "/listings", url.Values{
		"title": {"guarded cabin"},
		"price": {"90"},
	})
	resp.Body.Close()
	listing := listingByTitle(t, ts, "guarded cabin")

	logout(t, ts)
	signupAndLogin(t, ts, "intruder")

	resp = send(t, ts, http.MethodPut, "/listings/"+listing.ID.String(), url.Values{
		"title": {"hijacked"},
		"price": {"1"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings/"+listing.ID.String(), resp.Header.Get("Location"))

	body := decodeBody(t, ts.Get(t, "/listings/"+listing.ID.String()))
	assert.Contains(t, flashOf(t, body, "error"), "You don't have permission to do that!")

	unchanged := listingByTitle(t, ts, "guarded cabin")
	assert.Equal(t, listing.ID, unchanged.ID)
}

func TestListingHandler_OwnerUpdates(t *testing.T) {
	ts := testutil.NewTestServer(t)

	signupAndLogin(t, ts, "owneruser")
	resp := ts.PostForm(t, "/listings", url.Values{
		"title": {"old title"},
		"price": {"90"},
	})
	resp.Body.Close()
	listing := listingByTitle(t, ts, "old title")

	resp = send(t, ts, http.MethodPut, "/listings/"+listing.ID.String(), url.Values{
		"title":    {"new title"},
		"price":    {"140"},
		"imageUrl": {"http://example.com/pic.jpg"},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings/"+listing.ID.String(), resp.Header.Get("Location"))

	updated := listingByTitle(t, ts, "new title")
	assert.Equal(t, listing.ID, updated.ID)
	assert.Equal(t, 140, updated.Price)
	assert.Equal(t, "http://example.com/pic.jpg", updated.Image.Data().URL)

	body := decodeBody(t, ts.Get(t, "/listings/"+listing.ID.String()))
	assert.Contains(t, flashOf(t, body, "success"), "Updated successfully!")
}

func TestListingHandler_DeleteTwiceBothRedirect(t *testing.T) {
	ts := testutil.NewTestServer(t)

	signupAndLogin(t, ts, "owneruser")
	resp := ts.PostForm(t, "/listings", url.Values{
		"title": {"doomed listing"},
		"price": {"30"},
	})
	resp.Body.Close()
	listing := listingByTitle(t, ts, "doomed listing")

	resp = send(t, ts, http.MethodDelete, "/listings/"+listing.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, ts.DB.Model(&domain.Listing{}).Count(&count).Error)
	assert.Zero(t, count)

	// The second delete finds nothing and soft-fails to the same place.
	resp = send(t, ts, http.MethodDelete, "/listings/"+listing.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/listings", resp.Header.Get("Location"))
}

func TestListingHandler_IndexFiltersAndChips(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewListingBuilder().WithTitle("beachfront villa").WithPrice(300).Build(t, ts.DB)
	testutil.NewListingBuilder().WithTitle("mountain hut").WithPrice(80).Build(t, ts.DB)

	body := decodeBody(t, ts.Get(t, "/listings?search=beachfront&minPrice=100"))

	listings, ok := body["listings"].([]interface{})
	require.True(t, ok)
	require.Len(t, listings, 1)

	filters, ok := body["filters"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/listings?minPrice=100", filters["search"])
	assert.Equal(t, "/listings?search=beachfront", filters["minPrice"])
}

func TestListingHandler_Suggestions(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewListingBuilder().WithTitle("lakeside lodge").Build(t, ts.DB)

	body := decodeBody(t, ts.Get(t, "/listings/api/suggestions?q=lake"))
	suggestions, ok := body["suggestions"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"lakeside lodge"}, suggestions)

	// Below the minimum length the endpoint answers with an empty set.
	body = decodeBody(t, ts.Get(t, "/listings/api/suggestions?q=l"))
	assert.Empty(t, body["suggestions"])
}
