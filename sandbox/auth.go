package sandbox

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/relabs-tech/aqaar/api"
	"github.com/relabs-tech/aqaar/core/logger"
)

// RoleOwner is the role of the property owner, the only role allowed to use the
// owner endpoints
const RoleOwner = "Owner"

// IssueToken returns a signed token for the account with the given email
func (b *Backend) IssueToken(email string) (string, error) {
	b.mu.Lock()
	acc := b.findAccount(email)
	var admin api.Admin
	if acc != nil {
		admin = acc.admin
	}
	b.mu.Unlock()
	if acc == nil {
		return "", fmt.Errorf("no account %s", email)
	}
	return b.sign(admin)
}

func (b *Backend) sign(a api.Admin) (string, error) {
	claims := jwt.MapClaims{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
		"role":  a.Role.Name,
		"iat":   b.now().Unix(),
		"exp":   b.now().Add(b.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) findAccount(email string) *account {
	for _, acc := range b.accounts {
		if strings.EqualFold(acc.admin.Email, email) {
			return acc
		}
	}
	return nil
}

func (b *Backend) handleAuth() {
	b.router.HandleFunc(api.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "message", "invalid request body")
			return
		}
		b.mu.Lock()
		acc := b.findAccount(req.Email)
		var admin api.Admin
		if acc != nil {
			admin = acc.admin
		}
		b.mu.Unlock()

		if acc == nil || bcrypt.CompareHashAndPassword(acc.password, []byte(req.Password)) != nil {
			writeMessage(w, http.StatusUnauthorized, "message", "Invalid email or password")
			return
		}
		if !admin.Active {
			writeMessage(w, http.StatusForbidden, "message", "Account is disabled")
			return
		}
		token, err := b.sign(admin)
		if err != nil {
			logger.FromContext(r.Context()).WithError(err).Errorln("cannot sign token")
			http.Error(w, "Error 4712", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, api.LoginResponse{Token: token})
	}).Methods(http.MethodPost)
}

// authorize lets only requests with a valid owner token pass, except for the login
func (b *Backend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == api.PathLogin {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, "message", "Authentication required")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return b.secret, nil
		})
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "message", "Invalid or expired token")
			return
		}
		if role, _ := claims["role"].(string); role != RoleOwner {
			writeMessage(w, http.StatusForbidden, "error", "Access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
