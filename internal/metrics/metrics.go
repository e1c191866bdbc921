// Package metrics объявляет счётчики Prometheus подсистемы идентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "secure_notes"

var (
	// SigninAttempts — попытки входа по паролю с исходом success|bad_credentials|error.
	SigninAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_attempts_total",
		Help:      "Password sign-in attempts by outcome.",
	}, []string{"outcome"})

	// TokenRejections — отклонённые bearer-токены по причине.
	TokenRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Bearer tokens that did not produce a principal, by reason.",
	}, []string{"reason"})

	// FederatedLogins — федеративные входы по провайдеру и исходу found|created|error.
	FederatedLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "federated_logins_total",
		Help:      "Federated logins by provider and outcome.",
	}, []string{"provider", "outcome"})

	// PasswordResets — события жизненного цикла токенов сброса пароля.
	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_events_total",
		Help:      "Password reset token lifecycle events.",
	}, []string{"event"})

	// AccessDenied — отказы шлюза авторизации по статусу 401|403.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Requests rejected by the authorization gate.",
	}, []string{"status"})
)
