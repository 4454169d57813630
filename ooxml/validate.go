package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

var refAttr = regexp.MustCompile(`\br:(?:id|embed|link)="([^"]*)"`)

// Validate checks a finished package. Every relationship ID referenced by a
// part must resolve in that part's .rels, every internal relationship
// target must exist, every media extension must have exactly one Default,
// and no image extension may be declared without a matching file. All
// problems are reported together.
func Validate(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		files[f.Name] = body
	}

	raw, ok := files[contentTypesName]
	if !ok {
		return fmt.Errorf("missing %s", contentTypesName)
	}
	var ct ContentTypes
	if err := xml.Unmarshal(raw, &ct); err != nil {
		return fmt.Errorf("parse %s: %w", contentTypesName, err)
	}

	var errs []error
	declared := make(map[string]int)
	for _, d := range ct.Defaults {
		declared[strings.ToLower(d.Extension)]++
	}
	overridden := make(map[string]bool)
	for _, o := range ct.Overrides {
		name := strings.TrimPrefix(o.PartName, "/")
		overridden[name] = true
		if _, ok := files[name]; !ok {
			errs = append(errs, fmt.Errorf("override for missing part %s", name))
		}
	}

	used := make(map[string]bool)
	for name := range files {
		if name == contentTypesName {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		used[ext] = true
		switch n := declared[ext]; {
		case n > 1:
			errs = append(errs, fmt.Errorf("extension %q declared %d times", ext, n))
		case n == 0 && !overridden[name]:
			errs = append(errs, fmt.Errorf("no content type for %s", name))
		}
	}
	for _, d := range ct.Defaults {
		ext := strings.ToLower(d.Extension)
		if strings.HasPrefix(d.ContentType, "image/") && !used[ext] {
			errs = append(errs, fmt.Errorf("unused image extension %q declared", ext))
		}
	}

	relsByOwner := make(map[string]*Relationships)
	for name, body := range files {
		owner, ok := OwnerOf(name)
		if !ok {
			continue
		}
		var rels Relationships
		if err := xml.Unmarshal(body, &rels); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", name, err))
			continue
		}
		relsByOwner[owner] = &rels
		seen := make(map[string]bool)
		for _, rel := range rels.Relationship {
			if seen[rel.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate id %s", name, rel.ID))
			}
			seen[rel.ID] = true
			if rel.TargetMode == "External" {
				continue
			}
			target := ResolveTarget(owner, rel.Target)
			if _, ok := files[target]; !ok {
				errs = append(errs, fmt.Errorf("%s: %s targets missing part %s", name, rel.ID, target))
			}
		}
	}

	for name, body := range files {
		if path.Ext(name) != ".xml" || name == contentTypesName {
			continue
		}
		for _, m := range refAttr.FindAllSubmatch(body, -1) {
			id := string(m[1])
			rels := relsByOwner[name]
			if rels == nil {
				errs = append(errs, fmt.Errorf("%s references %s but has no relationships", name, id))
				continue
			}
			if _, ok := rels.Lookup(id); !ok {
				errs = append(errs, fmt.Errorf("%s references unknown %s", name, id))
			}
		}
	}
	return errors.Join(errs...)
}
