package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmiclocker/internal/logging"
	"cosmiclocker/internal/server/locker"
	"cosmiclocker/internal/server/users"
)

func newTestServer(t *testing.T) (*httptest.Server, *users.Store) {
	t.Helper()
	dir := t.TempDir()
	us := users.NewStore(filepath.Join(dir, "users.json"))
	lk, err := locker.New(dir, logging.NewNop())
	require.NoError(t, err)
	sessions := NewSessions([]byte("test-secret"), time.Hour)
	srv := NewServer(sessions, us, lk, logging.NewNop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, us
}

// client returns an http.Client with a cookie jar so the session survives
// across requests.
func client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postForm(t *testing.T, c *http.Client, url string, form map[string]string) (int, response) {
	t.Helper()
	values := make(map[string][]string, len(form))
	for k, v := range form {
		values[k] = []string{v}
	}
	resp, err := c.PostForm(url, values)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func signup(t *testing.T, c *http.Client, base string) {
	t.Helper()
	code, body := postForm(t, c, base+"/signup", map[string]string{
		"user_id":           "alice",
		"password":          "hunter2",
		"security_question": "First pet?",
		"security_answer":   "rex",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "success", body.Status)
}

func login(t *testing.T, c *http.Client, base string) {
	t.Helper()
	code, body := postForm(t, c, base+"/login", map[string]string{
		"user_id": "alice", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "/lock", body.Redirect)
}

func lockFile(t *testing.T, c *http.Client, base, name, content string) response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("password", "hunter2"))
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := c.Post(base+"/lock", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLogin_Outcomes(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)

	code, body := postForm(t, c, ts.URL+"/login", map[string]string{
		"user_id": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body.Message)

	code, body = postForm(t, c, ts.URL+"/login", map[string]string{"user_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User ID and password are required", body.Message)

	login(t, c, ts.URL)
}

func TestSignup_DuplicateUserID(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)

	code, body := postForm(t, c, ts.URL+"/signup", map[string]string{
		"user_id":           "alice",
		"password":          "x",
		"security_question": "q",
		"security_answer":   "a",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User ID already exists", body.Message)
}

func TestForgotPassword_Conversation(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)

	// Step one: the server hands back the question and a step token.
	code, body := postForm(t, c, ts.URL+"/forgot-password", map[string]string{
		"step": "user_id", "user_id": "alice",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "security_question", body.Step)
	assert.Equal(t, "First pet?", body.SecurityQuestion)
	assert.Equal(t, "alice", body.UserID)

	// Wrong answer keeps the conversation at this step.
	code, body = postForm(t, c, ts.URL+"/forgot-password", map[string]string{
		"step": "security_question", "user_id": "alice", "security_answer": "fido",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Incorrect security answer", body.Message)

	// Right answer grants the reset step.
	code, body = postForm(t, c, ts.URL+"/forgot-password", map[string]string{
		"step": "security_question", "user_id": "alice", "security_answer": "rex",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "reset_password", body.Step)
	assert.Equal(t, "alice", body.UserID)

	// Unknown user.
	code, body = postForm(t, c, ts.URL+"/forgot-password", map[string]string{
		"step": "user_id", "user_id": "nobody",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User ID not found", body.Message)
}

func TestResetPassword(t *testing.T) {
	ts, us := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)

	code, body := postForm(t, c, ts.URL+"/reset-password", map[string]string{
		"user_id": "alice", "new_password": "a", "confirm_password": "b",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Passwords do not match", body.Message)

	code, body = postForm(t, c, ts.URL+"/reset-password", map[string]string{
		"user_id": "alice", "new_password": "newpw", "confirm_password": "newpw",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/login-page", body.Redirect)
	assert.NoError(t, us.Authenticate("alice", "newpw"))
}

func TestVaultOperations_RequireSession(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)

	for _, path := range []string{"/lock", "/list", "/retrieve", "/delete", "/restore", "/recycle"} {
		code, body := postForm(t, c, ts.URL+path, map[string]string{"password": "x"})
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Login required", body.Message, path)
	}
}

func TestLockListRetrieve_FullCycle(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)
	login(t, c, ts.URL)

	body := lockFile(t, c, ts.URL, "report.txt", "top secret")
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "alice_report.txt.enc", body.FileName)

	code, listBody := postForm(t, c, ts.URL+"/list", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"alice_report.txt.enc"}, listBody.Files)

	// Retrieval streams the decrypted bytes.
	resp, err := c.PostForm(ts.URL+"/retrieve", url.Values{
		"password":  {"hunter2"},
		"file_name": {"alice_report.txt.enc"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "top secret", string(data))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "alice_report.txt")
	assert.NotContains(t, resp.Header.Get("Content-Disposition"), ".enc")
}

func TestRetrieve_WrongVaultPassword(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)
	login(t, c, ts.URL)
	lockFile(t, c, ts.URL, "a.txt", "1")

	code, body := postForm(t, c, ts.URL+"/retrieve", map[string]string{
		"password": "wrong", "file_name": "alice_a.txt.enc",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid password", body.Message)
}

func TestDeleteRecycleRestore_Cycle(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)
	login(t, c, ts.URL)
	lockFile(t, c, ts.URL, "a.txt", "1")

	code, body := postForm(t, c, ts.URL+"/delete", map[string]string{
		"password": "hunter2", "file_name": "alice_a.txt.enc",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice_a.txt.enc moved to recycle bin", body.Message)

	code, body = postForm(t, c, ts.URL+"/recycle", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"alice_a.txt.enc"}, body.Files)

	code, body = postForm(t, c, ts.URL+"/restore", map[string]string{
		"password": "hunter2", "file_name": "alice_a.txt.enc",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice_a.txt.enc restored", body.Message)

	code, body = postForm(t, c, ts.URL+"/recycle", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Files)

	// Deleting a file that is not in the vault fails.
	code, body = postForm(t, c, ts.URL+"/delete", map[string]string{
		"password": "hunter2", "file_name": "alice_missing.enc",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Failed to delete file", body.Message)
}

func TestLogout_EndsSession(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)
	login(t, c, ts.URL)

	resp, err := c.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code, body := postForm(t, c, ts.URL+"/list", map[string]string{"password": "hunter2"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Login required", body.Message)
}

func TestList_EmptyVault(t *testing.T) {
	ts, _ := newTestServer(t)
	c := client(t)
	signup(t, c, ts.URL)
	login(t, c, ts.URL)

	code, body := postForm(t, c, ts.URL+"/list", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body.Status)
	assert.Empty(t, body.Files)
}
