package privacy

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/config"
)

// Detector handles PII detection and masking in free text
type Detector struct {
	rules   []Rule
	enabled map[string]bool
	logger  *zap.Logger
	config  config.PrivacyConfig
	mu      sync.RWMutex
}

// New creates a new PII detector instance
func New(cfg config.PrivacyConfig, log *zap.Logger) (*Detector, error) {
	rules := GetDefaultRules()
	if char := cfg.Masking.Char; char != "" && char != "*" {
		for i := range rules {
			rules[i].Replacement = strings.ReplaceAll(rules[i].Replacement, "*", char)
		}
	}

	detector := &Detector{
		rules:   rules,
		enabled: make(map[string]bool),
		logger:  log,
		config:  cfg,
	}

	if err := detector.configureDetectors(cfg.Detectors); err != nil {
		return nil, fmt.Errorf("failed to configure detectors: %w", err)
	}

	log.Info("Privacy detector initialized",
		zap.Int("total_rules", len(detector.rules)),
		zap.Int("enabled_rules", detector.countEnabledRules()),
	)

	return detector, nil
}

// configureDetectors enables the named rules and disables the rest. "all"
// enables every rule. Nothing changes when a name is unknown.
func (d *Detector) configureDetectors(detectors []string) error {
	enabled := make(map[string]bool, len(d.rules))
	for _, rule := range d.rules {
		enabled[rule.Name] = false
	}

	for _, detector := range detectors {
		if detector == "all" {
			for _, rule := range d.rules {
				enabled[rule.Name] = true
			}
			continue
		}
		if _, ok := enabled[detector]; !ok {
			return fmt.Errorf("unknown detector: %s", detector)
		}
		enabled[detector] = true
	}

	d.enabled = enabled
	return nil
}

// Reconfigure swaps the enabled rule set, e.g. after a config reload
func (d *Detector) Reconfigure(detectors []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.configureDetectors(detectors); err != nil {
		return err
	}
	d.logger.Info("Privacy detectors reconfigured", zap.Strings("detectors", detectors))
	return nil
}

// Scan masks every enabled rule in text and reports what matched. Rules run
// in order, each on the output of the previous one.
func (d *Detector) Scan(text string) ScanResult {
	if !d.config.Enabled || text == "" {
		return ScanResult{Text: text}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var findings []Finding
	for _, rule := range d.rules {
		if !d.enabled[rule.Name] {
			continue
		}

		matches := rule.Pattern.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		offsets := make([]int, len(matches))
		for i, m := range matches {
			offsets[i] = m[0]
		}
		findings = append(findings, Finding{Rule: rule.Name, Count: len(matches), Offsets: offsets})
		text = rule.Pattern.ReplaceAllString(text, rule.Replacement)
	}

	return ScanResult{Text: text, Findings: findings}
}

// Mask returns text with every enabled rule applied.
func (d *Detector) Mask(text string) string {
	return d.Scan(text).Text
}

// Contains reports whether any enabled rule matches text.
func (d *Detector) Contains(text string) bool {
	return len(d.Scan(text).Findings) > 0
}

// Profile counts, per rule, how many of values contain that kind of personal
// data. Rules that never match are left out.
func (d *Detector) Profile(values []string) map[string]int {
	var counts map[string]int
	for _, v := range values {
		for _, f := range d.Scan(v).Findings {
			if counts == nil {
				counts = make(map[string]int)
			}
			counts[f.Rule]++
		}
	}
	if counts != nil {
		d.logger.Debug("Personal data profiled",
			zap.Int("values", len(values)),
			zap.Int("rules_matched", len(counts)),
		)
	}
	return counts
}

// countEnabledRules returns the number of enabled detection rules
func (d *Detector) countEnabledRules() int {
	count := 0
	for _, enabled := range d.enabled {
		if enabled {
			count++
		}
	}
	return count
}

// GetEnabledRules returns a list of enabled rule names, in rule order
func (d *Detector) GetEnabledRules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var enabled []string
	for _, rule := range d.rules {
		if d.enabled[rule.Name] {
			enabled = append(enabled, rule.Name)
		}
	}
	return enabled
}
