package ic

import (
	"fmt"
	"reflect"
)

// Selector is the key used to request a value: a string, a type identity
// from TypeOf, or any other comparable value.
type Selector = any

// Type identifies a declared or configuration type.
type Type = reflect.Type

// TypeOf returns the type identity of T, usable both as a Selector and as
// the key for Declare, Wire and WithConfig.
func TypeOf[T any]() Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RichSelector attaches registration flags to a selector. It is unwrapped on
// registration; the registry slot is always the inner Selector, so rich
// selectors sharing a key compose in the same slot.
type RichSelector struct {
	Selector  Selector
	Condition Condition
	Singleton bool
}

// When returns a rich selector whose binding only applies while cond holds.
func When(selector Selector, cond Condition) RichSelector {
	return richSelectorOf(selector).When(cond)
}

// AsSingleton returns a rich selector whose binding is memoized process-wide.
func AsSingleton(selector Selector) RichSelector {
	return richSelectorOf(selector).AsSingleton()
}

// When sets the condition of the rich selector.
func (r RichSelector) When(cond Condition) RichSelector {
	r.Condition = cond
	return r
}

// AsSingleton marks the rich selector's binding as a singleton.
func (r RichSelector) AsSingleton() RichSelector {
	r.Singleton = true
	return r
}

func (r RichSelector) String() string {
	return describeSelector(r.Selector)
}

func richSelectorOf(selector Selector) RichSelector {
	switch s := selector.(type) {
	case RichSelector:
		return s
	case *RichSelector:
		if s != nil {
			return *s
		}
	}
	return RichSelector{Selector: selector}
}

// selectorKey strips any rich selector wrapping and validates that the
// remaining key can live in a registry map.
func selectorKey(selector Selector) (Selector, error) {
	key := richSelectorOf(selector).Selector
	if key == nil {
		return nil, &InvalidSelectorError{Selector: "<nil>", Reason: "selector is nil"}
	}
	if !reflect.TypeOf(key).Comparable() {
		return nil, &InvalidSelectorError{
			Selector: describeSelector(key),
			Reason:   fmt.Sprintf("%T is not comparable", key),
		}
	}
	return key, nil
}

func describeSelector(selector Selector) string {
	switch s := selector.(type) {
	case nil:
		return "<nil>"
	case string:
		return s
	case reflect.Type:
		return s.String()
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}
