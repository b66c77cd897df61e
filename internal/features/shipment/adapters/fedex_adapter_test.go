package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"shipment-status/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fedexServer fakes the two carrier endpoints: the OAuth token exchange and
// the batched track POST.
func fedexServer(t *testing.T, tokenCalls, trackCalls *atomic.Int32, trackResponse map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "test-secret", r.PostForm.Get("client_secret"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/track/v1/trackingnumbers", func(w http.ResponseWriter, r *http.Request) {
		trackCalls.Add(1)

		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req struct {
			TrackingInfo []map[string]any `json:"trackingInfo"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.TrackingInfo)

		json.NewEncoder(w).Encode(trackResponse)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testFedExConfig(apiURL string) config.FedExConfig {
	return config.FedExConfig{
		APIURL:       apiURL,
		ClientID:     "test-id",
		ClientSecret: "test-secret",
	}
}

func trackResultFor(tn, code string) map[string]any {
	return map[string]any{
		"trackingNumber": tn,
		"trackResults": []any{
			map[string]any{
				"trackingNumberInfo": map[string]any{"trackingNumber": tn},
				"latestStatusDetail": map[string]any{"code": code},
			},
		},
	}
}

func TestFedExAdapter_FetchBatchDemuxesPerTrackingNumber(t *testing.T) {
	var tokenCalls, trackCalls atomic.Int32
	srv := fedexServer(t, &tokenCalls, &trackCalls, map[string]any{
		"output": map[string]any{
			"completeTrackResults": []any{
				trackResultFor("111111111111", "DL"),
				trackResultFor("222222222222", "OC"),
			},
		},
	})

	a := NewFedExAdapter(testFedExConfig(srv.URL))

	res, err := a.FetchBatch(context.Background(),
		[]string{"111111111111", "222222222222"}, nil)
	require.NoError(t, err)
	require.Len(t, res, 2)

	first := res["111111111111"]
	ctr, ok := first["completeTrackResults"].([]any)
	require.True(t, ok)
	require.Len(t, ctr, 1, "each payload holds only its own track result")

	assert.Contains(t, res, "222222222222")
	assert.Equal(t, int32(1), tokenCalls.Load())
	assert.Equal(t, int32(1), trackCalls.Load())
}

func TestFedExAdapter_TokenIsReusedAcrossBatches(t *testing.T) {
	var tokenCalls, trackCalls atomic.Int32
	srv := fedexServer(t, &tokenCalls, &trackCalls, map[string]any{
		"output": map[string]any{
			"completeTrackResults": []any{trackResultFor("111111111111", "DL")},
		},
	})

	a := NewFedExAdapter(testFedExConfig(srv.URL))

	ctx := context.Background()
	_, err := a.FetchBatch(ctx, []string{"111111111111"}, nil)
	require.NoError(t, err)
	_, err = a.FetchBatch(ctx, []string{"111111111111"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), tokenCalls.Load())
	assert.Equal(t, int32(2), trackCalls.Load())
}

func TestFedExAdapter_UnmatchedNumberGetsWholeResponse(t *testing.T) {
	var tokenCalls, trackCalls atomic.Int32
	srv := fedexServer(t, &tokenCalls, &trackCalls, map[string]any{
		"output": map[string]any{
			"completeTrackResults": []any{trackResultFor("111111111111", "DL")},
		},
	})

	a := NewFedExAdapter(testFedExConfig(srv.URL))

	res, err := a.FetchBatch(context.Background(),
		[]string{"111111111111", "999999999999"}, nil)
	require.NoError(t, err)

	whole := res["999999999999"]
	require.NotNil(t, whole)
	_, hasOutput := whole["output"]
	assert.True(t, hasOutput, "unmatched number maps to the whole chunk body")
}

func TestFedExAdapter_FetchSingle(t *testing.T) {
	var tokenCalls, trackCalls atomic.Int32
	srv := fedexServer(t, &tokenCalls, &trackCalls, map[string]any{
		"output": map[string]any{
			"completeTrackResults": []any{trackResultFor("111111111111", "DL")},
		},
	})

	a := NewFedExAdapter(testFedExConfig(srv.URL))

	payload, err := a.Fetch(context.Background(), "111111111111", "FDXE")
	require.NoError(t, err)
	assert.Contains(t, payload, "completeTrackResults")
}

func TestFedExAdapter_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	a := NewFedExAdapter(testFedExConfig(srv.URL))

	_, err := a.FetchBatch(context.Background(), []string{"111111111111"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token request")
}

func TestFedExAdapter_EmptyBatch(t *testing.T) {
	a := NewFedExAdapter(testFedExConfig("http://127.0.0.1:0"))

	res, err := a.FetchBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestDemuxTrackResults_NestedTrackingNumber(t *testing.T) {
	body := map[string]any{
		"completeTrackResults": []any{
			map[string]any{
				"trackResults": []any{
					map[string]any{
						"trackingNumberInfo": map[string]any{"trackingNumber": "777777777777"},
					},
				},
			},
		},
	}

	perTN := demuxTrackResults(body)
	assert.Contains(t, perTN, "777777777777")
}

func TestFedExAdapter_Source(t *testing.T) {
	assert.Equal(t, "fedex_api", NewFedExAdapter(config.FedExConfig{}).Source())
}
