package models

// Principal — аутентифицированная личность в рамках одного запроса.
type Principal struct {
	UserID      int64
	Username    string
	Email       string
	Authorities []string
}

// HasAuthority проверяет наличие полномочия у принципала.
func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
