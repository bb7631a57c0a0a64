// Package api exposes the vault service over HTTP. Every endpoint accepts a
// multipart form and answers with a small JSON envelope; a successful
// retrieval streams the decrypted file instead.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cosmiclocker/internal/logging"
	"cosmiclocker/internal/server/locker"
	"cosmiclocker/internal/server/users"
)

// maxUploadSize bounds in-memory parsing of multipart uploads.
const maxUploadSize = 64 << 20

// response is the JSON envelope shared by all endpoints.
type response struct {
	Status           string   `json:"status"`
	Message          string   `json:"message,omitempty"`
	Redirect         string   `json:"redirect,omitempty"`
	Step             string   `json:"step,omitempty"`
	SecurityQuestion string   `json:"security_question,omitempty"`
	UserID           string   `json:"user_id,omitempty"`
	FileName         string   `json:"file_name,omitempty"`
	Files            []string `json:"files,omitempty"`
}

// Server routes vault requests to the account store and the locker engine.
type Server struct {
	router   *mux.Router
	sessions *Sessions
	users    *users.Store
	locker   *locker.Locker
	log      logging.Logger
}

func NewServer(sessions *Sessions, us *users.Store, lk *locker.Locker, log logging.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		sessions: sessions,
		users:    us,
		locker:   lk,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/lock", s.handleLock).Methods(http.MethodPost)
	r.HandleFunc("/list", s.handleList).Methods(http.MethodPost)
	r.HandleFunc("/retrieve", s.handleRetrieve).Methods(http.MethodPost)
	r.HandleFunc("/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/restore", s.handleRestore).Methods(http.MethodPost)
	r.HandleFunc("/recycle", s.handleRecycle).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error(context.Background(), "encoding response", "error", err)
	}
}

func (s *Server) success(w http.ResponseWriter, resp response) {
	resp.Status = "success"
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, response{Status: "error", Message: message})
}

// authed resolves the session or answers 401. The bool reports whether the
// caller may proceed.
func (s *Server) authed(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.sessions.UserID(r)
	if err != nil {
		s.fail(w, http.StatusUnauthorized, "Login required")
		return "", false
	}
	return userID, true
}

// checkVaultPassword re-verifies the account password sent with each vault
// operation. The bool reports whether the caller may proceed.
func (s *Server) checkVaultPassword(w http.ResponseWriter, userID, password string) bool {
	if err := s.users.Authenticate(userID, password); err != nil {
		s.fail(w, http.StatusUnauthorized, "Invalid password")
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	userID := r.FormValue("user_id")
	password := r.FormValue("password")
	if userID == "" || password == "" {
		s.fail(w, http.StatusBadRequest, "User ID and password are required")
		return
	}
	if err := s.users.Authenticate(userID, password); err != nil {
		s.fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := s.sessions.Issue(w, userID); err != nil {
		s.log.Error(r.Context(), "issuing session", "error", err)
		s.fail(w, http.StatusInternalServerError, "Server error")
		return
	}
	s.success(w, response{Redirect: "/lock"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	userID := r.FormValue("user_id")
	password := r.FormValue("password")
	question := r.FormValue("security_question")
	answer := r.FormValue("security_answer")
	if userID == "" || password == "" || question == "" || answer == "" {
		s.fail(w, http.StatusBadRequest, "All fields are required")
		return
	}
	err := s.users.Create(userID, password, question, answer)
	switch {
	case errors.Is(err, users.ErrAlreadyExists):
		s.fail(w, http.StatusBadRequest, "User ID already exists")
	case err != nil:
		s.log.Error(r.Context(), "creating user", "error", err)
		s.fail(w, http.StatusInternalServerError, "Server error")
	default:
		s.success(w, response{Redirect: "/login-page", Message: "Signup successful"})
	}
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	step := r.FormValue("step")
	if step == "" {
		step = "user_id"
	}
	switch step {
	case "user_id":
		userID := r.FormValue("user_id")
		if userID == "" {
			s.fail(w, http.StatusBadRequest, "User ID is required")
			return
		}
		question, err := s.users.SecurityQuestion(userID)
		if err != nil {
			s.fail(w, http.StatusNotFound, "User ID not found")
			return
		}
		s.success(w, response{
			Step:             "security_question",
			SecurityQuestion: question,
			UserID:           userID,
		})

	case "security_question":
		userID := r.FormValue("user_id")
		answer := r.FormValue("security_answer")
		if answer == "" {
			s.fail(w, http.StatusBadRequest, "Security answer is required")
			return
		}
		if err := s.users.CheckAnswer(userID, answer); err != nil {
			s.fail(w, http.StatusUnauthorized, "Incorrect security answer")
			return
		}
		s.success(w, response{Step: "reset_password", UserID: userID})

	default:
		s.fail(w, http.StatusBadRequest, "Invalid step")
	}
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	userID := r.FormValue("user_id")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")
	if userID == "" || newPassword == "" || confirmPassword == "" {
		s.fail(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if newPassword != confirmPassword {
		s.fail(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if err := s.users.SetPassword(userID, newPassword); err != nil {
		s.fail(w, http.StatusNotFound, "User not found")
		return
	}
	s.success(w, response{Redirect: "/login-page", Message: "Password reset successful"})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.fail(w, http.StatusBadRequest, "Password and file are required")
		return
	}
	password := r.FormValue("password")
	file, header, err := r.FormFile("file")
	if err != nil || password == "" {
		s.fail(w, http.StatusBadRequest, "Password and file are required")
		return
	}
	defer file.Close()

	fileName, err := s.locker.Lock(userID, password, header.Filename, file)
	if err != nil {
		s.log.Error(r.Context(), "locking file", "file", header.Filename, "error", err)
		s.fail(w, http.StatusBadRequest, "Failed to lock file")
		return
	}
	s.success(w, response{FileName: fileName, Message: "File locked successfully"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	if password == "" {
		s.fail(w, http.StatusBadRequest, "Password is required")
		return
	}
	if !s.checkVaultPassword(w, userID, password) {
		return
	}
	files := s.locker.List(userID)
	if files == nil {
		files = []string{}
	}
	s.writeJSON(w, http.StatusOK, response{Status: "success", Files: files})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	fileName := r.FormValue("file_name")
	if password == "" || fileName == "" {
		s.fail(w, http.StatusBadRequest, "Password and file name are required")
		return
	}
	if !s.checkVaultPassword(w, userID, password) {
		return
	}
	content, err := s.locker.Retrieve(fileName, userID, password)
	if err != nil {
		s.fail(w, http.StatusNotFound, "File not found or decryption failed")
		return
	}
	downloadName := strings.TrimSuffix(fileName, ".enc")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	if _, err := w.Write(content); err != nil {
		s.log.Error(r.Context(), "writing file response", "file", fileName, "error", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	fileName := r.FormValue("file_name")
	if password == "" || fileName == "" {
		s.fail(w, http.StatusBadRequest, "Password and file name are required")
		return
	}
	if !s.checkVaultPassword(w, userID, password) {
		return
	}
	if err := s.locker.Delete(fileName, userID); err != nil {
		s.fail(w, http.StatusBadRequest, "Failed to delete file")
		return
	}
	s.success(w, response{Message: fileName + " moved to recycle bin"})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	fileName := r.FormValue("file_name")
	if password == "" || fileName == "" {
		s.fail(w, http.StatusBadRequest, "Password and file name are required")
		return
	}
	if !s.checkVaultPassword(w, userID, password) {
		return
	}
	if err := s.locker.Restore(fileName, userID); err != nil {
		s.fail(w, http.StatusBadRequest, "Failed to restore file")
		return
	}
	s.success(w, response{Message: fileName + " restored"})
}

func (s *Server) handleRecycle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authed(w, r)
	if !ok {
		return
	}
	password := r.FormValue("password")
	if password == "" {
		s.fail(w, http.StatusBadRequest, "Password is required")
		return
	}
	if !s.checkVaultPassword(w, userID, password) {
		return
	}
	files := s.locker.ListRecycleBin(userID)
	if files == nil {
		files = []string{}
	}
	s.writeJSON(w, http.StatusOK, response{Status: "success", Files: files})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	s.success(w, response{Redirect: "/"})
}
