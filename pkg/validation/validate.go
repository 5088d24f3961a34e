// Package validation checks write-path input against the program's account
// caps before any instruction payload is built. The program rejects
// oversized fields anyway; checking here turns a doomed ledger write into a
// local 400.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"blocksd/pkg/layout"
)

func checkStr(field, v string, max int, required bool) string {
	if v == "" {
		if required {
			return field + " is required"
		}
		return ""
	}
	if !utf8.ValidString(v) {
		return field + " is not valid UTF-8"
	}
	if len(v) > max {
		return fmt.Sprintf("%s too long: %d > %d", field, len(v), max)
	}
	return ""
}

func collect(errs []string) error {
	out := errs[:0]
	for _, e := range errs {
		if e != "" {
			out = append(out, e)
		}
	}
	if len(out) > 0 {
		return errors.New(strings.Join(out, "; "))
	}
	return nil
}

// ValidateProfile checks profile create/update fields.
func ValidateProfile(username, bio, profileImage, coverImage string, usernameRequired bool) error {
	return collect([]string{
		checkStr("username", username, layout.MaxUsername, usernameRequired),
		checkStr("bio", bio, layout.MaxBio, false),
		checkStr("profile_image", profileImage, layout.MaxURI, false),
		checkStr("cover_image", coverImage, layout.MaxURI, false),
	})
}

// ValidatePost checks post content and image URIs.
func ValidatePost(content string, images []string) error {
	errs := []string{checkStr("content", content, layout.MaxContent, true)}
	if len(images) > layout.MaxImages {
		errs = append(errs, fmt.Sprintf("too many images: %d > %d", len(images), layout.MaxImages))
	}
	for i, img := range images {
		errs = append(errs, checkStr(fmt.Sprintf("images[%d]", i), img, layout.MaxURI, true))
	}
	return collect(errs)
}

// ValidateComment checks comment content.
func ValidateComment(content string) error {
	return collect([]string{checkStr("content", content, layout.MaxContent, true)})
}

// ValidateCommunity checks community create fields.
func ValidateCommunity(name, description, avatar string, rules []string) error {
	errs := []string{
		checkStr("name", name, layout.MaxName, true),
		checkStr("description", description, layout.MaxDescription, false),
		checkStr("avatar", avatar, layout.MaxURI, false),
	}
	if len(rules) > layout.MaxRules {
		errs = append(errs, fmt.Sprintf("too many rules: %d > %d", len(rules), layout.MaxRules))
	}
	for i, rule := range rules {
		errs = append(errs, checkStr(fmt.Sprintf("rules[%d]", i), rule, layout.MaxRule, true))
	}
	return collect(errs)
}
