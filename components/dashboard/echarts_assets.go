package dashboard

import (
	"os"
	"strings"
)

const (
	// PublicEChartsAssetsHost serves the ECharts runtime and themes used by go-echarts.
	PublicEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// EnvEChartsCDN overrides the assets host (e.g., a self-hosted bucket).
	EnvEChartsCDN = "NEXUSBOARD_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the assets host, respecting NEXUSBOARD_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	return ResolveEChartsAssetsHost("")
}

// ResolveEChartsAssetsHost picks configured, then the environment, then the public host.
func ResolveEChartsAssetsHost(configured string) string {
	if host := strings.TrimSpace(configured); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(EnvEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return PublicEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
