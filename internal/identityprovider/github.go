package identityprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

// GitHubProvider выполняет вход через OAuth2 GitHub и читает профиль
// пользователя из REST API. Утверждения: login, id, email.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHubProvider создаёт провайдера GitHub.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPI,
	}
}

// Name возвращает имя провайдера.
func (p *GitHubProvider) Name() string {
	return GitHub
}

// AuthCodeURL возвращает адрес авторизации GitHub. nonce не используется.
func (p *GitHubProvider) AuthCodeURL(state, _ string) string {
	return p.config.AuthCodeURL(state)
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Identify обменивает код на токен и получает профиль. Если email скрыт
// в профиле, берётся основной подтверждённый адрес из /user/emails.
func (p *GitHubProvider) Identify(ctx context.Context, code, _ string) (Claims, error) {
	const op = "identityprovider.GitHub.Identify"

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: exchange: %w", op, err)
	}
	client := p.config.Client(ctx, token)

	claims := Claims{}
	if err = p.getJSON(ctx, client, "/user", &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if email, _ := claims["email"].(string); email == "" {
		var emails []githubEmail
		if err = p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				claims["email"] = e.Email
				break
			}
		}
	}
	return claims, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(p.apiBase, "/")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
