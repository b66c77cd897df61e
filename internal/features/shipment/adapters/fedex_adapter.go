package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"shipment-status/internal/core/config"
	"shipment-status/internal/core/httpclient"
	"shipment-status/internal/core/logger"
	"shipment-status/internal/features/shipment/domain"

	"go.uber.org/zap"
)

// trackBatchSize is the carrier's limit on tracking numbers per track POST.
const trackBatchSize = 30

// FedExAdapter fetches live shipment payloads from the FedEx Track API.
// It acquires an OAuth client-credentials token (form body, cached in memory
// until shortly before expiry) and batches track requests.
type FedExAdapter struct {
	cfg    config.FedExConfig
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewFedExAdapter creates a new FedExAdapter from the given configuration.
func NewFedExAdapter(cfg config.FedExConfig) *FedExAdapter {
	return &FedExAdapter{
		cfg:    cfg,
		client: httpclient.NewClient(30 * time.Second),
		logger: logger.Named("fedex"),
	}
}

// Fetch retrieves the payload for a single tracking number. An empty payload
// means the carrier returned nothing for it.
func (a *FedExAdapter) Fetch(ctx context.Context, trackingNumber, carrierCode string) (domain.RawPayload, error) {
	carrierMap := map[string]string{}
	if carrierCode != "" {
		carrierMap[trackingNumber] = carrierCode
	}

	res, err := a.FetchBatch(ctx, []string{trackingNumber}, carrierMap)
	if err != nil {
		return nil, err
	}
	if payload, ok := res[trackingNumber]; ok {
		return payload, nil
	}
	return domain.RawPayload{}, nil
}

// FetchBatch retrieves payloads for up to any number of tracking numbers,
// chunked into carrier-sized track requests. The result maps each requested
// tracking number to its demultiplexed payload; numbers the carrier did not
// answer for map to the whole chunk response so nothing is silently lost.
func (a *FedExAdapter) FetchBatch(ctx context.Context, trackingNumbers []string, carrierMap map[string]string) (map[string]domain.RawPayload, error) {
	out := make(map[string]domain.RawPayload, len(trackingNumbers))
	if len(trackingNumbers) == 0 {
		return out, nil
	}

	token, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(trackingNumbers); i += trackBatchSize {
		chunk := trackingNumbers[i:min(i+trackBatchSize, len(trackingNumbers))]

		body, err := a.postTracking(ctx, token, chunk, carrierMap)
		if err != nil {
			return nil, err
		}

		perTN := demuxTrackResults(body)
		for _, tn := range chunk {
			if payload, ok := perTN[tn]; ok {
				out[tn] = payload
			} else {
				out[tn] = body
			}
		}
	}

	return out, nil
}

// Source implements ports.PayloadFetcher.
func (a *FedExAdapter) Source() string {
	return "fedex_api"
}

// authenticate returns a valid access token, reusing the cached one until
// shortly before it expires.
func (a *FedExAdapter) authenticate(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-10*time.Second)) {
		return a.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.APIURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status: %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}
	if tokenResp.ExpiresIn <= 0 {
		tokenResp.ExpiresIn = 3600
	}

	a.token = tokenResp.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	a.logger.Debug("Carrier token acquired",
		zap.Int("expires_in", tokenResp.ExpiresIn),
	)

	return a.token, nil
}

// postTracking sends one track request for a chunk of tracking numbers.
func (a *FedExAdapter) postTracking(ctx context.Context, token string, chunk []string, carrierMap map[string]string) (domain.RawPayload, error) {
	trackingInfo := make([]map[string]any, 0, len(chunk))
	for _, tn := range chunk {
		info := map[string]any{
			"trackingNumberInfo": map[string]any{"trackingNumber": tn},
		}
		if cc := carrierMap[tn]; cc != "" {
			info["carrierCode"] = cc
		}
		trackingInfo = append(trackingInfo, info)
	}

	reqBody, err := json.Marshal(map[string]any{
		"trackingInfo":         trackingInfo,
		"includeDetailedScans": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal track request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.APIURL+"/track/v1/trackingnumbers", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create track request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("track request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("track request returned status: %d", resp.StatusCode)
	}

	var body domain.RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode track response: %w", err)
	}
	return body, nil
}

// demuxTrackResults splits a batched track response into one payload per
// tracking number, keyed by the number found on each completeTrackResults
// entry or nested under its trackResults.
func demuxTrackResults(body domain.RawPayload) map[string]domain.RawPayload {
	perTN := make(map[string]domain.RawPayload)

	ctr := findCompleteTrackResults(body)
	for _, raw := range ctr {
		cr, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		wrapped := domain.RawPayload{"completeTrackResults": []any{cr}}

		if tn, ok := cr["trackingNumber"].(string); ok && strings.TrimSpace(tn) != "" {
			perTN[strings.TrimSpace(tn)] = wrapped
			continue
		}

		trList, _ := cr["trackResults"].([]any)
		for _, trRaw := range trList {
			tr, ok := trRaw.(map[string]any)
			if !ok {
				continue
			}
			tni, _ := tr["trackingNumberInfo"].(map[string]any)
			if tn, ok := tni["trackingNumber"].(string); ok && strings.TrimSpace(tn) != "" {
				perTN[strings.TrimSpace(tn)] = wrapped
			}
		}
	}

	return perTN
}

// findCompleteTrackResults locates the results list at the top level or under
// the common wrapper envelopes.
func findCompleteTrackResults(body domain.RawPayload) []any {
	if ctr, ok := body["completeTrackResults"].([]any); ok {
		return ctr
	}

	cand := map[string]any(body)
	for _, key := range []string{"output", "body", "response", "data"} {
		if inner, ok := cand[key].(map[string]any); ok {
			cand = inner
		}
		if ctr, ok := cand["completeTrackResults"].([]any); ok {
			return ctr
		}
	}
	return nil
}
