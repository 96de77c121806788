package snapshot

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru"
)

// PlanCacheSize bounds how many distinct types keep a memoized plan.
const PlanCacheSize = 256

// typePlan is what the encoder knows about a type before touching a value:
// whether it can be encoded at all and, if every value of the type encodes
// to the same length, what that length is.
type typePlan struct {
	fixed     int  // -1 when the encoded length depends on the value
	recursive bool // the type reaches itself through a slice or map
	err       error
}

var plans = newPlanCache(PlanCacheSize)

func newPlanCache(size int) *lru.Cache {
	c, err := lru.New(size)
	if err != nil {
		panic(fmt.Sprintf("snapshot: plan cache: %v", err))
	}
	return c
}

func planFor(t reflect.Type) typePlan {
	if cached, ok := plans.Get(t); ok {
		return cached.(typePlan)
	}
	p := buildPlan(t, make(map[reflect.Type]bool))
	plans.Add(t, p)
	return p
}

// Supported reports whether values of type t can be encoded. The returned
// error wraps ErrUnsupported and names the offending type.
func Supported(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrUnsupported)
	}
	return planFor(t).err
}

// FixedSize returns the encoded length shared by every value of type t, or
// false when the length depends on the value or t is unsupported.
func FixedSize(t reflect.Type) (int, bool) {
	if t == nil {
		return 0, false
	}
	p := planFor(t)
	if p.err != nil || p.fixed < 0 {
		return 0, false
	}
	return p.fixed, true
}

func buildPlan(t reflect.Type, visiting map[reflect.Type]bool) typePlan {
	if visiting[t] {
		// A type can only refer back to itself through a slice or map here,
		// and those already encode their own length.
		return typePlan{fixed: -1, recursive: true}
	}

	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return typePlan{fixed: 1}
	case reflect.Int16, reflect.Uint16:
		return typePlan{fixed: 2}
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return typePlan{fixed: 4}
	case reflect.Int64, reflect.Uint64, reflect.Float64, reflect.Complex64:
		return typePlan{fixed: 8}
	case reflect.Complex128:
		return typePlan{fixed: 16}
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return typePlan{fixed: int(t.Size())}
	case reflect.String:
		return typePlan{fixed: -1}

	case reflect.Slice:
		visiting[t] = true
		defer delete(visiting, t)
		e := buildPlan(t.Elem(), visiting)
		if e.err != nil {
			return typePlan{err: e.err}
		}
		return typePlan{fixed: -1, recursive: e.recursive}

	case reflect.Map:
		visiting[t] = true
		defer delete(visiting, t)
		k := buildPlan(t.Key(), visiting)
		if k.err != nil {
			return typePlan{err: fmt.Errorf("map key: %w", k.err)}
		}
		e := buildPlan(t.Elem(), visiting)
		if e.err != nil {
			return typePlan{err: e.err}
		}
		return typePlan{fixed: -1, recursive: k.recursive || e.recursive}

	case reflect.Array:
		e := buildPlan(t.Elem(), visiting)
		if e.err != nil {
			return typePlan{err: e.err}
		}
		if e.fixed < 0 {
			return typePlan{fixed: -1, recursive: e.recursive}
		}
		return typePlan{fixed: e.fixed * t.Len()}

	case reflect.Struct:
		total := 0
		recursive := false
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			fp := buildPlan(f.Type, visiting)
			if fp.err != nil {
				return typePlan{err: fmt.Errorf("field %s: %w", f.Name, fp.err)}
			}
			recursive = recursive || fp.recursive
			if fp.fixed < 0 || total < 0 {
				total = -1
				continue
			}
			total += fp.fixed
		}
		return typePlan{fixed: total, recursive: recursive}
	}

	// Pointers, unsafe.Pointer, channels, funcs and interfaces have no
	// stable byte form to copy.
	return typePlan{err: fmt.Errorf("%w: %s", ErrUnsupported, t)}
}
