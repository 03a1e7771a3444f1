package routing

import (
	"strings"

	"shorepull/internal/config"
	"shorepull/internal/inventory"
)

// subbottomMarker in an instrument name redirects Singlebeam Sonar records to
// the Subbottom rule.
const subbottomMarker = "[includes subbottom]"

// Rule describes where a package lands and whether it is unpacked there.
type Rule struct {
	Name                string
	DestinationTemplate string
	Untar               bool
}

// Render fills the destination template's vessel and survey tokens.
func (r Rule) Render(ship, survey string) string {
	replacer := strings.NewReplacer("{ship}", ship, "{survey}", survey)
	return replacer.Replace(r.DestinationTemplate)
}

// RuleSet is the static routing table consulted once per package. It is built
// from configuration at startup and never mutated afterwards.
type RuleSet struct {
	rules map[string]Rule
}

// DefaultRules builds the routing table over the configured landing roots.
func DefaultRules(landing config.Landing) RuleSet {
	wcsd := landing.WCSDDir
	multibeam := landing.MultibeamDir + "/{ship}/{survey}"
	trackline := func(kind string) string {
		return landing.TracklineDir + "/" + kind + "/{ship}/{survey}"
	}

	rules := map[string]Rule{
		"WCD Multibeam":   {Name: "WCD Multibeam", DestinationTemplate: wcsd, Untar: true},
		"Splitbeam Sonar": {Name: "Splitbeam Sonar", DestinationTemplate: wcsd, Untar: true},
		"Multibeam Sonar": {Name: "Multibeam Sonar", DestinationTemplate: multibeam, Untar: true},
		"Gravimeter":      {Name: "Gravimeter", DestinationTemplate: trackline("gravity"), Untar: false},
		"Magnetometer":    {Name: "Magnetometer", DestinationTemplate: trackline("magnetics"), Untar: false},
		"gnss":            {Name: "gnss", DestinationTemplate: trackline("gnss"), Untar: false},
		"r2rnav":          {Name: "r2rnav", DestinationTemplate: trackline("nav"), Untar: false},
		"Singlebeam Sonar": {
			Name: "Singlebeam Sonar", DestinationTemplate: trackline("singlebeam"), Untar: true,
		},
		"Subbottom": {Name: "Subbottom", DestinationTemplate: trackline("subbottom"), Untar: true},
	}
	return RuleSet{rules: rules}
}

// Resolve maps a record's classification to its routing rule. The boolean is
// false when no rule applies; callers skip such packages with a diagnostic
// rather than inventing a destination.
func (rs RuleSet) Resolve(group inventory.DataType, instrumentType, instrumentName string) (Rule, bool) {
	switch group {
	case inventory.DataTypeWCSD:
		if instrumentType == "Splitbeam Sonar" {
			return rs.lookup("Splitbeam Sonar")
		}
		return rs.lookup("WCD Multibeam")
	case inventory.DataTypeMultibeam:
		return rs.lookup("Multibeam Sonar")
	case inventory.DataTypeTrackline:
		switch instrumentType {
		case "Gravimeter", "Magnetometer", "gnss", "r2rnav":
			return rs.lookup(instrumentType)
		case "Singlebeam Sonar":
			if strings.Contains(instrumentName, subbottomMarker) {
				return rs.lookup("Subbottom")
			}
			return rs.lookup("Singlebeam Sonar")
		}
	}
	return Rule{}, false
}

func (rs RuleSet) lookup(name string) (Rule, bool) {
	rule, ok := rs.rules[name]
	return rule, ok
}
