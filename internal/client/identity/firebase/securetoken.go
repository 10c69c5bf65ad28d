package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
)

const DefaultSecureTokenURL = "https://securetoken.googleapis.com/v1/token"

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type tokenError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// exchangeRefreshToken trades a refresh token for a new ID token at the
// Secure Token endpoint.
func (p *Provider) exchangeRefreshToken(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	endpoint := p.cfg.SecureTokenURL + "?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, identity.NewError(identity.CodeInternal, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, identity.NewError(identity.CodeNetworkFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, identity.NewError(identity.CodeNetworkFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, identity.NewError(identity.CodeNetworkFailed, fmt.Errorf("secure token: status %d", resp.StatusCode))
		}
		var te tokenError
		_ = json.Unmarshal(body, &te)
		return nil, identity.NewError(codeForMessage(te.Error.Message), fmt.Errorf("secure token: %s", te.Error.Message))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, identity.NewError(identity.CodeInternal, fmt.Errorf("decode secure token response: %w", err))
	}
	return &tr, nil
}

func expiry(now time.Time, expiresIn string) time.Time {
	secs, err := strconv.ParseInt(expiresIn, 10, 64)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return now.Add(time.Duration(secs) * time.Second)
}
