package action_test

import (
	"testing"

	"github.com/aretw0/pipedeck/pkg/action"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders_Argv(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (domain.ActionRequest, error)
		argv     []string
		redacted []string
	}{
		{
			name: "login",
			build: func() (domain.ActionRequest, error) {
				return action.Login(action.LoginParams{Username: "ana", Password: "s3cret", API: "https://api.test"})
			},
			argv:     []string{"login", "ana", "--api", "https://api.test", "--password", "s3cret"},
			redacted: []string{"login", "ana", "--api", "https://api.test", "--password", "****"},
		},
		{
			name: "upload encrypted",
			build: func() (domain.ActionRequest, error) {
				return action.Upload(action.UploadParams{Local: "/tmp/a.txt", Remote: "a.txt", Tier: "premium", Encrypt: true, Password: "pw"})
			},
			argv: []string{"upload-file", "/tmp/a.txt", "a.txt", "--tier", "premium", "--encrypt", "--gui-style", "--password", "pw"},
		},
		{
			name: "upload default tier",
			build: func() (domain.ActionRequest, error) {
				return action.Upload(action.UploadParams{Local: "a", Remote: "b"})
			},
			argv: []string{"upload-file", "a", "b", "--tier", "normal", "--gui-style"},
		},
		{
			name: "download legacy decrypt",
			build: func() (domain.ActionRequest, error) {
				return action.Download(action.DownloadParams{Remote: "a.txt", SaveAs: "/tmp/a.txt", Decrypt: true, Legacy: true, Password: "pw"})
			},
			argv: []string{"download-file", "a.txt", "/tmp/a.txt", "--decrypt", "--legacy", "--gui-style", "--password", "pw"},
		},
		{
			name: "create link",
			build: func() (domain.ActionRequest, error) {
				return action.CreateLink(action.LinkParams{Remote: " a.txt ", Title: "Report", API: "https://api.test"})
			},
			argv: []string{"create-public-link", "a.txt", "--title", "Report", "--api", "https://api.test"},
		},
		{
			name: "create link default api",
			build: func() (domain.ActionRequest, error) {
				return action.CreateLink(action.LinkParams{Remote: "a.txt", Description: "d"})
			},
			argv: []string{"create-public-link", "a.txt", "--description", "d", "--api", action.DefaultAPI},
		},
		{
			name: "encrypt local",
			build: func() (domain.ActionRequest, error) {
				return action.EncryptLocal(action.CryptParams{Input: "in", Output: "out", Password: "pw"})
			},
			argv: []string{"encrypt-local", "in", "out", "--password", "pw"},
		},
		{
			name: "token usage default period",
			build: func() (domain.ActionRequest, error) {
				return action.TokenUsage(action.UsageParams{})
			},
			argv: []string{"token-usage", "-p", "30d"},
		},
		{
			name: "withdraw token default mint",
			build: func() (domain.ActionRequest, error) {
				return action.WithdrawToken(action.WithdrawTokenParams{Amount: "1.5", To: "dest"}, extract.PipeMint)
			},
			argv: []string{"withdraw-custom-token", extract.PipeMint, "1.5", "dest"},
		},
		{
			name: "check sol",
			build: func() (domain.ActionRequest, error) {
				return action.Bare(domain.ActionCheckSOL)
			},
			argv: []string{"check-sol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.argv, req.Argv())
			if tt.redacted != nil {
				assert.Equal(t, tt.redacted, req.Redacted())
			}
		})
	}
}

func TestBuilders_Validation(t *testing.T) {
	cases := map[string]func() (domain.ActionRequest, error){
		"login without password": func() (domain.ActionRequest, error) {
			return action.Login(action.LoginParams{Username: "ana"})
		},
		"unknown tier": func() (domain.ActionRequest, error) {
			return action.Upload(action.UploadParams{Local: "a", Remote: "b", Tier: "gold"})
		},
		"encrypt without password": func() (domain.ActionRequest, error) {
			return action.Upload(action.UploadParams{Local: "a", Remote: "b", Encrypt: true})
		},
		"negative amount": func() (domain.ActionRequest, error) {
			return action.Swap(action.SwapParams{Amount: "-1"})
		},
		"exponent amount": func() (domain.ActionRequest, error) {
			return action.Swap(action.SwapParams{Amount: "1e3"})
		},
		"withdraw without destination": func() (domain.ActionRequest, error) {
			return action.WithdrawSOL(action.WithdrawSOLParams{Amount: "1"})
		},
		"unknown period": func() (domain.ActionRequest, error) {
			return action.TokenUsage(action.UsageParams{Period: "1y"})
		},
		"bare with params kind": func() (domain.ActionRequest, error) {
			return action.Bare(domain.ActionUpload)
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := build()
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestBuild_FromPayload(t *testing.T) {
	req, err := action.Build(domain.ActionSwapSOL, map[string]any{"amount": 0.25}, action.Defaults{})
	require.NoError(t, err)
	assert.Equal(t, []string{"swap-sol-for-pipe", "0.25"}, req.Argv())

	req, err = action.Build(domain.ActionUpload, map[string]any{
		"local":    "/tmp/x",
		"remote":   "x",
		"encrypt":  "true",
		"password": "pw",
	}, action.Defaults{})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionUpload, req.Kind)
	assert.Contains(t, req.Args, "--encrypt")

	req, err = action.Build(domain.ActionLogin, map[string]any{"username": "ana", "password": "pw"}, action.Defaults{API: "https://cfg.test"})
	require.NoError(t, err)
	assert.Equal(t, "https://cfg.test", req.Endpoint)

	req, err = action.Build(domain.ActionWithdrawToken, map[string]any{"amount": "2", "to": "dest"}, action.Defaults{})
	require.NoError(t, err)
	assert.Equal(t, extract.PipeMint, req.Args[0])

	req, err = action.Build(domain.ActionListUploads, nil, action.Defaults{})
	require.NoError(t, err)
	assert.Equal(t, []string{"list-uploads"}, req.Argv())
}

func TestBuild_Rejects(t *testing.T) {
	_, err := action.Build("format-disk", nil, action.Defaults{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = action.Build(domain.ActionSwapSOL, map[string]any{"amount": "1", "slippage": 3}, action.Defaults{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "unknown keys are rejected")

	_, err = action.Build(domain.ActionCheckSOL, map[string]any{"x": 1}, action.Defaults{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
