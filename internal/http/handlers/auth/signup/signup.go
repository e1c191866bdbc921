// Package signup реализует HTTP-обработчик регистрации по email и паролю.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/secure-notes/internal/http/response"
	"github.com/magabrotheeeer/secure-notes/internal/lib/sl"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

// bcrypt ограничивает пароль 72 байтами, а не символами.
const maxPasswordLen = 72

// Request — данные регистрации. Role: "user", "admin" или пусто.
type Request struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, req auth.SignupRequest) (int64, error)
}

// Handler обрабатывает POST /api/auth/public/signup.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись с паролем. Имя пользователя и email уникальны.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные регистрации"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Имя или email заняты, неизвестная роль, слишком длинный пароль"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /api/auth/public/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if len(req.Password) > maxPasswordLen {
		log.Info("password exceeds bcrypt limit", slog.Int("bytes", len(req.Password)))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("password is too long"))
		return
	}

	id, err := h.service.Register(r.Context(), auth.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		status, msg := http.StatusBadRequest, ""
		switch {
		case errors.Is(err, models.ErrDuplicateUsername):
			msg = "Error: Username is already taken!"
		case errors.Is(err, models.ErrDuplicateEmail):
			msg = "Error: Email is already in use!"
		case errors.Is(err, models.ErrUnknownRole):
			msg = "Error: Role is not found."
		case errors.Is(err, models.ErrRoleNotAllowed):
			msg = "Error: Role is not allowed."
		case errors.Is(err, bcrypt.ErrPasswordTooLong):
			msg = "password is too long"
		default:
			log.Error("failed to register user", sl.Err(err))
			status, msg = http.StatusInternalServerError, "internal error"
		}
		if status == http.StatusBadRequest {
			log.Info("sign-up rejected", sl.Err(err))
		}
		w.WriteHeader(status)
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("user registered", slog.Int64("user_id", id))
	render.JSON(w, r, response.Message("User registered successfully!"))
}
