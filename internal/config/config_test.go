package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "")
	t.Setenv("ANNOTATION_THRESHOLD", "")
	t.Setenv("EXTRACTION_TIMEOUT", "")
	t.Setenv("BOOND_SINCE", "")
	t.Setenv("NOTIFY_TO", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.AnnotationThreshold)
	assert.Equal(t, 120*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, MailProviderNone, cfg.MailProvider)
	assert.Equal(t, 15*time.Minute, cfg.Boond.Interval)
	assert.True(t, cfg.Boond.Since.IsZero())
	assert.Empty(t, cfg.NotifyTo)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ANNOTATION_THRESHOLD", "0.75")
	t.Setenv("EXTRACTION_TIMEOUT", "30s")
	t.Setenv("NOTIFY_TO", "ops@example.com, sales@example.com ,")
	t.Setenv("BOOND_SINCE", "2025-11-17T00:00:00Z")
	t.Setenv("MAIL_PROVIDER", "GMAIL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.AnnotationThreshold)
	assert.Equal(t, 30*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, []string{"ops@example.com", "sales@example.com"}, cfg.NotifyTo)
	assert.Equal(t, time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC), cfg.Boond.Since)
	assert.Equal(t, MailProviderGmail, cfg.MailProvider)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"threshold not a number": {"ANNOTATION_THRESHOLD", "high"},
		"threshold out of range": {"ANNOTATION_THRESHOLD", "1.5"},
		"threshold NaN":          {"ANNOTATION_THRESHOLD", "NaN"},
		"timeout not a duration": {"EXTRACTION_TIMEOUT", "120"},
		"negative timeout":       {"EXTRACTION_TIMEOUT", "-1s"},
		"since not RFC3339":      {"BOOND_SINCE", "17/11/2025"},
		"unknown mail provider":  {"MAIL_PROVIDER", "smtp"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_GraphNeedsCredentials(t *testing.T) {
	cfg := &Config{
		AnnotationThreshold: 0.5,
		ExtractionTimeout:   time.Minute,
		MailProvider:        MailProviderGraph,
		Boond:               BoondConfig{Interval: time.Minute},
	}
	require.Error(t, cfg.Validate())

	cfg.Graph = GraphConfig{TenantID: "t", ClientID: "c", ClientSecret: "s", Mailbox: "rfp@example.com"}
	assert.NoError(t, cfg.Validate())
}

func TestBoondConfig_Enabled(t *testing.T) {
	assert.False(t, BoondConfig{ClientToken: "a", ClientKey: "b"}.Enabled())
	assert.True(t, BoondConfig{ClientToken: "a", ClientKey: "b", UserToken: "c"}.Enabled())
}
