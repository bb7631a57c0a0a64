package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"time"

	"cosmiclocker/internal/logging"
)

// Endpoint paths of the vault service.
const (
	EndpointLogin          = "/login"
	EndpointSignup         = "/signup"
	EndpointForgotPassword = "/forgot-password"
	EndpointResetPassword  = "/reset-password"
	EndpointLock           = "/lock"
	EndpointList           = "/list"
	EndpointRetrieve       = "/retrieve"
	EndpointDelete         = "/delete"
	EndpointRestore        = "/restore"
	EndpointRecycle        = "/recycle"
	EndpointLogout         = "/logout"
)

const statusSuccess = "success"

// response is the structured JSON body every endpoint (except a successful
// /retrieve) answers with.
type response struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	Redirect         string   `json:"redirect"`
	Step             string   `json:"step"`
	SecurityQuestion string   `json:"security_question"`
	UserID           string   `json:"user_id"`
	FileName         string   `json:"file_name"`
	Files            []string `json:"files"`
}

// field is one form field. A slice keeps the encoding order fixed.
type field struct {
	name  string
	value string
}

// HTTPClient dispatches multipart form requests to the vault service and
// classifies every response into an Outcome. It carries the service's session
// cookie in a jar; nothing else is persisted between calls.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout, Jar: jar},
		log:     log,
	}
}

func (c *HTTPClient) Login(ctx context.Context, userID, password string) *Outcome {
	return c.submit(ctx, EndpointLogin, []field{
		{"user_id", userID},
		{"password", password},
	}, nil)
}

func (c *HTTPClient) Signup(ctx context.Context, userID, password, securityQuestion, securityAnswer string) *Outcome {
	return c.submit(ctx, EndpointSignup, []field{
		{"user_id", userID},
		{"password", password},
		{"security_question", securityQuestion},
		{"security_answer", securityAnswer},
	}, nil)
}

func (c *HTTPClient) BeginRecovery(ctx context.Context, userID string) *Outcome {
	return c.submit(ctx, EndpointForgotPassword, []field{
		{"user_id", userID},
		{"step", StepUserID},
	}, nil)
}

func (c *HTTPClient) AnswerSecurityQuestion(ctx context.Context, userID, securityAnswer string) *Outcome {
	return c.submit(ctx, EndpointForgotPassword, []field{
		{"user_id", userID},
		{"security_answer", securityAnswer},
		{"step", StepSecurityQuestion},
	}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) *Outcome {
	return c.submit(ctx, EndpointResetPassword, []field{
		{"user_id", userID},
		{"new_password", newPassword},
		{"confirm_password", confirmPassword},
		{"step", StepResetPassword},
	}, nil)
}

func (c *HTTPClient) Lock(ctx context.Context, password string, file Upload) *Outcome {
	return c.submit(ctx, EndpointLock, []field{
		{"password", password},
	}, &file)
}

func (c *HTTPClient) List(ctx context.Context, password string) *Outcome {
	return c.submit(ctx, EndpointList, []field{{"password", password}}, nil)
}

func (c *HTTPClient) RecycleBin(ctx context.Context, password string) *Outcome {
	return c.submit(ctx, EndpointRecycle, []field{{"password", password}}, nil)
}

// Retrieve is the only call whose success body is binary. A non-2xx status
// carries a structured JSON error instead.
func (c *HTTPClient) Retrieve(ctx context.Context, password, fileName string) ([]byte, *Outcome) {
	resp, err := c.post(ctx, EndpointRetrieve, []field{
		{"password", password},
		{"file_name", fileName},
	}, nil)
	if err != nil {
		return nil, c.networkFailure(ctx, EndpointRetrieve, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, c.networkFailure(ctx, EndpointRetrieve, err)
		}
		return data, &Outcome{Kind: OutcomeSuccess, FileName: fileName}
	}
	return nil, classify(resp.Body)
}

func (c *HTTPClient) Delete(ctx context.Context, password, fileName string) *Outcome {
	return c.submit(ctx, EndpointDelete, []field{
		{"password", password},
		{"file_name", fileName},
	}, nil)
}

func (c *HTTPClient) Restore(ctx context.Context, password, fileName string) *Outcome {
	return c.submit(ctx, EndpointRestore, []field{
		{"password", password},
		{"file_name", fileName},
	}, nil)
}

// Logout is the one GET in the contract. Any completed exchange counts as
// success; the body is deliberately ignored.
func (c *HTTPClient) Logout(ctx context.Context) *Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+EndpointLogout, nil)
	if err != nil {
		return c.networkFailure(ctx, EndpointLogout, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.networkFailure(ctx, EndpointLogout, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return &Outcome{Kind: OutcomeSuccess}
}

// submit issues one multipart POST and classifies the structured response.
func (c *HTTPClient) submit(ctx context.Context, endpoint string, fields []field, file *Upload) *Outcome {
	resp, err := c.post(ctx, endpoint, fields, file)
	if err != nil {
		return c.networkFailure(ctx, endpoint, err)
	}
	defer resp.Body.Close()
	return classify(resp.Body)
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, fields []field, file *Upload) (*http.Response, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, err
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", file.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, file.Reader); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.http.Do(req)
}

// classify maps a structured response body to an Outcome. An unparsable body
// counts as a transport failure, never a partially-parsed success.
func classify(r io.Reader) *Outcome {
	var body response
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return &Outcome{Kind: OutcomeNetworkError, Message: NetworkErrorMessage}
	}
	out := &Outcome{
		Message:          body.Message,
		Redirect:         body.Redirect,
		Step:             body.Step,
		SecurityQuestion: body.SecurityQuestion,
		UserID:           body.UserID,
		FileName:         body.FileName,
		Files:            body.Files,
	}
	if body.Status == statusSuccess {
		out.Kind = OutcomeSuccess
	} else {
		out.Kind = OutcomeDomainError
	}
	return out
}

func (c *HTTPClient) networkFailure(ctx context.Context, endpoint string, err error) *Outcome {
	c.log.Error(ctx, "request failed", "endpoint", endpoint, "error", err)
	return &Outcome{Kind: OutcomeNetworkError, Message: NetworkErrorMessage}
}
