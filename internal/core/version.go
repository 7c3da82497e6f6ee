package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"variant-packager/internal/types"
)

// ValidateIdentity checks that the identity can be rendered into provide
// strings: the upstream version must be PEP 440 and the full
// epoch:version-release must parse as an EVR.
func ValidateIdentity(identity types.PackageIdentity) error {
	if strings.TrimSpace(identity.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name must not be empty")
	}
	if strings.ContainsAny(identity.Name, " \t()=") {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package name %q contains reserved characters", identity.Name))
	}
	if strings.TrimSpace(identity.Version) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package version must not be empty")
	}
	if _, err := pep440.Parse(identity.Version); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package version %s is not a valid PEP 440 version", identity.Version)).
			WithCause(err)
	}
	if strings.TrimSpace(identity.Release) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package release must not be empty")
	}
	if strings.Contains(identity.Release, "-") {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package release %s must not contain '-'", identity.Release))
	}
	if _, err := debversion.NewVersion(identity.EVR()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid epoch:version-release %s", identity.EVR())).
			WithCause(err)
	}
	return nil
}

// CompareEVR orders two epoch:version-release strings. Unparsable values
// compare equal.
func CompareEVR(a string, b string) int {
	v1, err := debversion.NewVersion(a)
	if err != nil {
		return 0
	}
	v2, err := debversion.NewVersion(b)
	if err != nil {
		return 0
	}
	return v1.Compare(v2)
}
