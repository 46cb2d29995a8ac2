package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

// criteria collects at most one filter dimension from a query string. A
// min/max pair is one dimension.
type criteria[C any] struct {
	query url.Values
	found []string
	value C
	err   error
}

func newCriteria[C any](query url.Values) *criteria[C] {
	return &criteria[C]{query: query}
}

func (c *criteria[C]) param(name string, parse func(string) (C, error)) {
	if !c.query.Has(name) {
		return
	}
	c.found = append(c.found, name)
	value, err := parse(c.query.Get(name))
	if err != nil {
		c.fail(name, err)
		return
	}
	c.value = value
}

func (c *criteria[C]) rangeParam(minName, maxName string, build func(store.Range) C) {
	hasMin, hasMax := c.query.Has(minName), c.query.Has(maxName)
	if !hasMin && !hasMax {
		return
	}
	c.found = append(c.found, minName+"/"+maxName)

	var r store.Range
	if hasMin {
		v, err := parseFloat32(c.query.Get(minName))
		if err != nil {
			c.fail(minName, err)
			return
		}
		r.Min = &v
	}
	if hasMax {
		v, err := parseFloat32(c.query.Get(maxName))
		if err != nil {
			c.fail(maxName, err)
			return
		}
		r.Max = &v
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		c.fail(minName, fmt.Errorf("%s is greater than %s", minName, maxName))
		return
	}
	c.value = build(r)
}

func (c *criteria[C]) fail(name string, err error) {
	if c.err == nil {
		c.err = CodedError(fmt.Errorf("invalid %s: %w", name, err), http.StatusBadRequest)
	}
}

// result returns the criterion, or the zero C when the query has none.
func (c *criteria[C]) result() (C, error) {
	var zero C
	if len(c.found) > 1 {
		return zero, CodedError(fmt.Errorf("at most one filter per request, got %s", strings.Join(c.found, ", ")), http.StatusBadRequest)
	}
	if c.err != nil {
		return zero, c.err
	}
	return c.value, nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int32(v), nil
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return float32(v), nil
}

func nonEmpty(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("must not be empty")
	}
	return s, nil
}

func ParseGrowerCriterion(q url.Values) (store.GrowerCriterion, error) {
	c := newCriteria[store.GrowerCriterion](q)
	c.param("id", func(s string) (store.GrowerCriterion, error) {
		id, err := parseInt32(s)
		return store.GrowerID(id), err
	})
	c.param("name", func(s string) (store.GrowerCriterion, error) {
		name, err := nonEmpty(s)
		return store.GrowerName(name), err
	})
	return c.result()
}

func ParseStrainCriterion(q url.Values) (store.StrainCriterion, error) {
	c := newCriteria[store.StrainCriterion](q)
	c.param("id", func(s string) (store.StrainCriterion, error) {
		id, err := parseInt32(s)
		return store.StrainID(id), err
	})
	c.param("name", func(s string) (store.StrainCriterion, error) {
		name, err := nonEmpty(s)
		return store.StrainName(name), err
	})
	c.param("species", func(s string) (store.StrainCriterion, error) {
		species, err := models.ParseSpecies(s)
		return store.StrainSpecies(species), err
	})
	return c.result()
}

func ParseTerpenesCriterion(q url.Values) (store.TerpenesCriterion, error) {
	c := newCriteria[store.TerpenesCriterion](q)
	c.param("id", func(s string) (store.TerpenesCriterion, error) {
		id, err := parseInt32(s)
		return store.TerpenesID(id), err
	})
	c.param("batch_id", func(s string) (store.TerpenesCriterion, error) {
		id, err := parseInt32(s)
		return store.TerpenesBatchID(id), err
	})
	return c.result()
}

func ParseBatchCriterion(q url.Values) (store.BatchCriterion, error) {
	c := newCriteria[store.BatchCriterion](q)

	ids := map[string]func(int32) store.BatchCriterion{
		"id":        func(v int32) store.BatchCriterion { return store.BatchID(v) },
		"strain_id": func(v int32) store.BatchCriterion { return store.BatchStrainID(v) },
		"grower_id": func(v int32) store.BatchCriterion { return store.BatchGrowerID(v) },
	}
	dates := map[string]func(schema.Date) store.BatchCriterion{
		"harvest_date":    func(d schema.Date) store.BatchCriterion { return store.HarvestDate(d) },
		"final_test_date": func(d schema.Date) store.BatchCriterion { return store.FinalTestDate(d) },
		"package_date":    func(d schema.Date) store.BatchCriterion { return store.PackageDate(d) },
	}

	for _, name := range []string{"id", "strain_id", "grower_id"} {
		wrap := ids[name]
		c.param(name, func(s string) (store.BatchCriterion, error) {
			v, err := parseInt32(s)
			return wrap(v), err
		})
	}
	for _, name := range []string{"harvest_date", "final_test_date", "package_date"} {
		wrap := dates[name]
		c.param(name, func(s string) (store.BatchCriterion, error) {
			d, err := schema.ParseDate(s)
			return wrap(d), err
		})
	}
	c.param("thc", func(s string) (store.BatchCriterion, error) {
		v, err := parseFloat32(s)
		return store.THCContent(v), err
	})
	c.param("cbd", func(s string) (store.BatchCriterion, error) {
		v, err := parseFloat32(s)
		return store.CBDContent(v), err
	})
	c.rangeParam("thc_min", "thc_max", func(r store.Range) store.BatchCriterion { return store.THCRange(r) })
	c.rangeParam("cbd_min", "cbd_max", func(r store.Range) store.BatchCriterion { return store.CBDRange(r) })
	c.param("strain", func(s string) (store.BatchCriterion, error) {
		name, err := nonEmpty(s)
		return store.BatchStrainName(name), err
	})
	c.param("grower", func(s string) (store.BatchCriterion, error) {
		name, err := nonEmpty(s)
		return store.BatchGrowerName(name), err
	})
	return c.result()
}
