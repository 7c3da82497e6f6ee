package adapters

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

const SBOMFileName = "sbom.spdx.json"

type SBOMWriterAdapter struct{}

func NewSBOMWriterAdapter() SBOMWriterAdapter {
	return SBOMWriterAdapter{}
}

// WriteSBOM writes an SPDX 2.3 document with one package for the
// subpackage and one file entry per manifest file, checksummed with
// BLAKE3. Hard-linked duplicates share a checksum.
func (a SBOMWriterAdapter) WriteSBOM(dir string, stagingRoot string, manifest types.Manifest) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if strings.TrimSpace(manifest.BuildID) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build id is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	type spdxCreationInfo struct {
		Created  string   `json:"created"`
		Creators []string `json:"creators"`
	}
	type spdxChecksum struct {
		Algorithm     string `json:"algorithm"`
		ChecksumValue string `json:"checksumValue"`
	}
	type spdxPackage struct {
		SPDXID           string `json:"SPDXID"`
		Name             string `json:"name"`
		VersionInfo      string `json:"versionInfo"`
		DownloadLocation string `json:"downloadLocation"`
		LicenseConcluded string `json:"licenseConcluded"`
		LicenseDeclared  string `json:"licenseDeclared"`
		Supplier         string `json:"supplier"`
		FilesAnalyzed    bool   `json:"filesAnalyzed"`
	}
	type spdxFile struct {
		SPDXID           string         `json:"SPDXID"`
		FileName         string         `json:"fileName"`
		Checksums        []spdxChecksum `json:"checksums"`
		LicenseConcluded string         `json:"licenseConcluded"`
	}
	type spdxRelationship struct {
		SpdxElementID      string `json:"spdxElementId"`
		RelationshipType   string `json:"relationshipType"`
		RelatedSpdxElement string `json:"relatedSpdxElement"`
	}
	created := strings.TrimSpace(manifest.CreatedAt)
	if created == "" {
		created = time.Now().UTC().Format(time.RFC3339)
	}
	license := strings.TrimSpace(manifest.License)
	if license == "" {
		license = "NOASSERTION"
	}
	packageID := spdxElementID("Package", manifest.Profile.SubpackageName+"@"+manifest.Package.EVR())
	payload := struct {
		SPDXVersion       string             `json:"spdxVersion"`
		DataLicense       string             `json:"dataLicense"`
		SPDXID            string             `json:"SPDXID"`
		Name              string             `json:"name"`
		DocumentNamespace string             `json:"documentNamespace"`
		CreationInfo      spdxCreationInfo   `json:"creationInfo"`
		Packages          []spdxPackage      `json:"packages"`
		Files             []spdxFile         `json:"files"`
		Relationships     []spdxRelationship `json:"relationships"`
		DocumentDescribes []string           `json:"documentDescribes"`
	}{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXID:            "SPDXRef-DOCUMENT",
		Name:              fmt.Sprintf("%s %s", manifest.Profile.SubpackageName, manifest.Package.EVR()),
		DocumentNamespace: fmt.Sprintf("urn:variant-packager:build:%s", manifest.BuildID),
		CreationInfo: spdxCreationInfo{
			Created:  created,
			Creators: []string{"Tool: variant-packager"},
		},
		Packages: []spdxPackage{{
			SPDXID:           packageID,
			Name:             manifest.Profile.SubpackageName,
			VersionInfo:      manifest.Package.EVR(),
			DownloadLocation: "NOASSERTION",
			LicenseConcluded: "NOASSERTION",
			LicenseDeclared:  license,
			Supplier:         "NOASSERTION",
			FilesAnalyzed:    true,
		}},
		DocumentDescribes: []string{packageID},
		Relationships: []spdxRelationship{{
			SpdxElementID:      "SPDXRef-DOCUMENT",
			RelationshipType:   "DESCRIBES",
			RelatedSpdxElement: packageID,
		}},
	}
	for _, file := range manifest.Files {
		rel := strings.TrimPrefix(file, "/")
		path := filepath.Join(stagingRoot, filepath.FromSlash(rel))
		info, err := os.Lstat(path)
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("manifest file %s is missing from the staging root", rel)).
				WithCause(err)
		}
		var digest []byte
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return "", errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to read link %s", rel)).
					WithCause(err)
			}
			sum := hashBytes([]byte(target))
			digest = sum[:]
		} else {
			sum, err := hashFile(path)
			if err != nil {
				return "", errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to hash %s", rel)).
					WithCause(err)
			}
			digest = sum[:]
		}
		fileID := spdxElementID("File", rel)
		payload.Files = append(payload.Files, spdxFile{
			SPDXID:           fileID,
			FileName:         "./" + rel,
			Checksums:        []spdxChecksum{{Algorithm: "BLAKE3", ChecksumValue: hex.EncodeToString(digest)}},
			LicenseConcluded: "NOASSERTION",
		})
		payload.Relationships = append(payload.Relationships, spdxRelationship{
			SpdxElementID:      packageID,
			RelationshipType:   "CONTAINS",
			RelatedSpdxElement: fileID,
		})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal sbom payload").
			WithCause(err)
	}
	path := filepath.Join(dir, SBOMFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write sbom file").
			WithCause(err)
	}
	return path, nil
}

func spdxElementID(kind string, seed string) string {
	hash := hashBytes([]byte(seed))
	return "SPDXRef-" + kind + "-" + hex.EncodeToString(hash[:8])
}

var _ ports.SBOMWriterPort = SBOMWriterAdapter{}
