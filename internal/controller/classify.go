package controller

import (
	"net/http"
	"strings"
)

// Strategy is how an intercepted request is answered.
type Strategy string

const (
	StrategyPassThrough       Strategy = "pass_through"
	StrategyNetworkFirst      Strategy = "network_first"
	StrategyNetworkFirstWrite Strategy = "network_first_write"
	StrategyNavigate          Strategy = "navigate"
	StrategyCacheFirst        Strategy = "cache_first"
)

// Classify picks the strategy for req. Rules are evaluated in order and the
// first match wins.
func Classify(req Request) Strategy {
	if req.Method != http.MethodGet {
		return StrategyPassThrough
	}
	path := req.Path
	switch {
	case strings.Contains(path, "manifest.json"), strings.Contains(path, "/api/manifest.json"):
		return StrategyNetworkFirst
	case strings.Contains(path, "/api/uploads/branding/"):
		return StrategyNetworkFirstWrite
	case strings.Contains(path, "/api/"):
		return StrategyPassThrough
	case req.IsNavigate():
		return StrategyNavigate
	default:
		return StrategyCacheFirst
	}
}
