package tsast

import "sort"

// CollectRefs returns the sorted set of declared type names a type
// expression mentions. The planner uses it to compute model imports.
func CollectRefs(expr TypeExpr) []string {
	set := make(map[string]bool)
	collectRefs(expr, set)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CollectDeclRefs gathers referenced names across a declaration's
// fields, members, and signatures.
func CollectDeclRefs(d Decl) []string {
	set := make(map[string]bool)
	switch decl := d.(type) {
	case *Interface:
		for _, f := range decl.Fields {
			collectRefs(f.Type, set)
		}
		if decl.Index != nil {
			collectRefs(decl.Index.ValueType, set)
		}
		for _, ext := range decl.Extends {
			set[ext] = true
		}
	case *TypeAlias:
		collectRefs(decl.Type, set)
	case *Class:
		for _, p := range decl.Properties {
			collectRefs(p.Type, set)
		}
		for _, m := range append(decl.Methods, decl.Constructor) {
			if m == nil {
				continue
			}
			for _, p := range m.Params {
				collectRefs(p.Type, set)
			}
			collectRefs(m.Return, set)
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectRefs(expr TypeExpr, set map[string]bool) {
	switch t := expr.(type) {
	case nil:
	case *Reference:
		set[t.Name] = true
		for _, a := range t.TypeArgs {
			collectRefs(a, set)
		}
	case *Array:
		collectRefs(t.Element, set)
	case *Tuple:
		for _, e := range t.Elements {
			collectRefs(e, set)
		}
	case *Union:
		for _, m := range t.Members {
			collectRefs(m, set)
		}
	case *Intersection:
		for _, m := range t.Members {
			collectRefs(m, set)
		}
	case *Object:
		for _, f := range t.Fields {
			collectRefs(f.Type, set)
		}
		if t.Index != nil {
			collectRefs(t.Index.ValueType, set)
		}
	case *FunctionType:
		for _, p := range t.Params {
			collectRefs(p.Type, set)
		}
		collectRefs(t.Return, set)
	}
}
