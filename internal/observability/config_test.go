package observability

import (
	"testing"
	"time"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("disabled needs no endpoint", func(t *testing.T) {
		cfg, err := LoadConfig(&types.Config{OTelEnabled: false})
		require.NoError(t, err)
		require.False(t, cfg.Enabled)
		require.Equal(t, "websearch", cfg.ServiceName)
		require.Equal(t, "http/protobuf", cfg.ExporterProtocol)
		require.Equal(t, 60*time.Second, cfg.MetricExportInterval)
	})

	t.Run("enabled requires endpoint", func(t *testing.T) {
		_, err := LoadConfig(&types.Config{OTelEnabled: true})
		require.Error(t, err)
		require.Contains(t, err.Error(), "endpoint is required")
	})

	t.Run("http endpoint must carry scheme", func(t *testing.T) {
		_, err := LoadConfig(&types.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "collector:4318",
			OTelExporterOTLPProtocol: "http/protobuf",
		})
		require.Error(t, err)
	})

	t.Run("grpc host port accepted", func(t *testing.T) {
		cfg, err := LoadConfig(&types.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "collector:4317",
			OTelExporterOTLPProtocol: "grpc",
		})
		require.NoError(t, err)
		require.Equal(t, "grpc", cfg.ExporterProtocol)
	})

	t.Run("resource attributes parsed", func(t *testing.T) {
		cfg, err := LoadConfig(&types.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "https://collector:4318",
			OTelResourceAttributes:   "deployment.environment=prod, team=search",
		})
		require.NoError(t, err)
		require.Equal(t, "prod", cfg.ResourceAttributes["deployment.environment"])
		require.Equal(t, "search", cfg.ResourceAttributes["team"])
		require.Equal(t, "websearch", cfg.ResourceAttributes["service.name"])
	})

	t.Run("malformed resource attribute fails", func(t *testing.T) {
		_, err := LoadConfig(&types.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "https://collector:4318",
			OTelResourceAttributes:   "no-equals-sign",
		})
		require.Error(t, err)
	})

	t.Run("traceidratio sampler bounds", func(t *testing.T) {
		_, err := LoadConfig(&types.Config{
			OTelEnabled:              true,
			OTelExporterOTLPEndpoint: "https://collector:4318",
			OTelTracesSampler:        "traceidratio",
			OTelTracesSamplerArg:     1.5,
		})
		require.Error(t, err)
	})
}

func TestParseGRPCEndpoint(t *testing.T) {
	testcases := []struct {
		raw          string
		wantHost     string
		wantInsecure bool
		wantErr      bool
	}{
		{raw: "collector:4317", wantHost: "collector:4317", wantInsecure: true},
		{raw: "http://collector:4317", wantHost: "collector:4317", wantInsecure: true},
		{raw: "grpc://collector:4317", wantHost: "collector:4317", wantInsecure: true},
		{raw: "https://collector:4317", wantHost: "collector:4317", wantInsecure: false},
		{raw: "grpcs://collector:4317", wantHost: "collector:4317", wantInsecure: false},
		{raw: "ftp://collector:4317", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range testcases {
		host, insecure, err := parseGRPCEndpoint(tt.raw)
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.wantHost, host, tt.raw)
		require.Equal(t, tt.wantInsecure, insecure, tt.raw)
	}
}
