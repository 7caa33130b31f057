// Package rules loads user-defined placement rules and matches files against
// them. A matching rule overrides the extension mapping for that file; when
// several rules match, the one with the highest priority wins and ties keep
// file order.
package rules
