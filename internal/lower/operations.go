package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openapi-nexus/nexus/internal/naming"
	"github.com/openapi-nexus/nexus/internal/openapi"
	"github.com/openapi-nexus/nexus/internal/tsast"
)

// DefaultTag groups operations that declare no tag.
const DefaultTag = "Default"

// ParamData is one operation parameter as the body templates see it:
// the TS argument name plus the wire name it maps back to.
type ParamData struct {
	Name     string // TS argument name, camel case
	WireName string // name on the wire (path segment, query key, header)
	Required bool
}

// MethodData is the template payload for one API method body.
type MethodData struct {
	Verb         string // uppercase HTTP verb
	Path         string // TS template literal, e.g. /pets/${petId}
	PathParams   []ParamData
	QueryParams  []ParamData
	HeaderParams []ParamData
	BodyParam    string // argument name of the request body, or ""
	HasReturn    bool
	ReturnType   string // rendered payload type, e.g. Array<Pet>
}

// MethodPlan pairs the structural method node with its body payload.
type MethodPlan struct {
	Method *tsast.Method
	Data   MethodData
}

// APIClass is one generated API class: every operation sharing a tag.
type APIClass struct {
	Tag       string
	Name      string // class name, e.g. PetsApi
	Docs      string
	Methods   []MethodPlan
	ModelRefs []string // referenced model names, for imports
}

// Classes lowers every operation, grouped by tag in first-seen order.
// An untagged operation lands on the Default tag.
func (l *Lowerer) Classes() ([]*APIClass, error) {
	byTag := make(map[string]*APIClass)
	var order []string

	for _, path := range l.doc.Paths.Keys() {
		item, _ := l.doc.Paths.Get(path)
		for _, mo := range item.Ordered() {
			tag := DefaultTag
			if len(mo.Operation.Tags) > 0 {
				tag = mo.Operation.Tags[0]
			}
			class, ok := byTag[tag]
			if !ok {
				class = &APIClass{
					Tag:  tag,
					Name: naming.Identifier(tag, naming.Pascal) + "Api",
					Docs: l.tagDescription(tag),
				}
				byTag[tag] = class
				order = append(order, tag)
			}
			plan, err := l.method(path, mo.Method, mo.Operation)
			if err != nil {
				return nil, err
			}
			class.Methods = append(class.Methods, plan)
		}
	}

	out := make([]*APIClass, 0, len(order))
	for _, tag := range order {
		class := byTag[tag]
		class.ModelRefs = collectClassRefs(class)
		out = append(out, class)
	}
	return out, nil
}

func (l *Lowerer) tagDescription(tag string) string {
	for _, t := range l.doc.Tags {
		if t.Name == tag {
			return t.Description
		}
	}
	return ""
}

func (l *Lowerer) method(path, verb string, op *openapi.Operation) (MethodPlan, error) {
	name := op.OperationID
	if name == "" {
		name = verb + " " + strings.NewReplacer("{", "", "}", "", "/", " ").Replace(path)
	}
	name = naming.Identifier(name, naming.Camel)

	params, err := l.parameters(op)
	if err != nil {
		return MethodPlan{}, err
	}

	data := MethodData{
		Verb: strings.ToUpper(verb),
		Path: pathLiteral(path, params),
	}

	var args []*tsast.Param
	// Required arguments precede optional ones, path params first.
	for _, group := range [][]loweredParam{params.path, params.query, params.header} {
		for _, p := range group {
			if p.data.Required {
				args = append(args, p.param)
			}
		}
	}
	if op.RequestBody != nil {
		bodyType, err := l.requestBodyType(op.RequestBody)
		if err != nil {
			return MethodPlan{}, err
		}
		args = append(args, &tsast.Param{
			Name:     "body",
			Type:     bodyType,
			Optional: !op.RequestBody.Required,
		})
		data.BodyParam = "body"
	}
	for _, group := range [][]loweredParam{params.path, params.query, params.header} {
		for _, p := range group {
			if !p.data.Required {
				args = append(args, p.param)
			}
		}
	}

	for _, p := range params.path {
		data.PathParams = append(data.PathParams, p.data)
	}
	for _, p := range params.query {
		data.QueryParams = append(data.QueryParams, p.data)
	}
	for _, p := range params.header {
		data.HeaderParams = append(data.HeaderParams, p.data)
	}

	payload, err := l.responseType(op)
	if err != nil {
		return MethodPlan{}, err
	}
	data.HasReturn = payload != nil
	if payload == nil {
		payload = &tsast.Primitive{Kind: tsast.Void}
	}
	data.ReturnType = tsast.Print(payload, tsast.NewEmissionContext())

	method := &tsast.Method{
		Name:     name,
		Docs:     methodDocs(op),
		Async:    true,
		Params:   args,
		Return:   promiseOf(payload),
		Template: bodyTemplate(verb),
		HTTPVerb: data.Verb,
	}
	return MethodPlan{Method: method, Data: data}, nil
}

type loweredParam struct {
	param *tsast.Param
	data  ParamData
}

type paramGroups struct {
	path, query, header []loweredParam
}

func (l *Lowerer) parameters(op *openapi.Operation) (paramGroups, error) {
	var groups paramGroups
	for _, p := range op.Parameters {
		if p.Ref != "" {
			resolved, err := l.resolver.Parameter(p.Ref)
			if err != nil {
				return groups, err
			}
			p = resolved
		}
		t, err := l.Type(p.Schema)
		if err != nil {
			return groups, err
		}
		required := p.Required || p.In == "path"
		lp := loweredParam{
			param: &tsast.Param{
				Name:     naming.Identifier(p.Name, naming.Camel),
				Type:     t,
				Optional: !required,
			},
			data: ParamData{
				Name:     naming.Identifier(p.Name, naming.Camel),
				WireName: p.Name,
				Required: required,
			},
		}
		switch p.In {
		case "path":
			groups.path = append(groups.path, lp)
		case "header":
			groups.header = append(groups.header, lp)
		default: // query and cookie both travel in the query string
			groups.query = append(groups.query, lp)
		}
	}
	return groups, nil
}

func (l *Lowerer) requestBodyType(body *openapi.RequestBody) (tsast.TypeExpr, error) {
	if body.Ref != "" {
		// Component request bodies are rare; resolve through responses
		// is not applicable, so type the payload as unknown.
		return &tsast.Primitive{Kind: tsast.Unknown}, nil
	}
	for _, mt := range body.Content {
		if mt.ContentType == "application/json" {
			return l.Type(mt.Schema)
		}
	}
	if len(body.Content) > 0 {
		return l.Type(body.Content[0].Schema)
	}
	return &tsast.Primitive{Kind: tsast.Unknown}, nil
}

// responseType picks the success payload: the lowest 2xx status with
// JSON content. A success status without content yields nil (void).
func (l *Lowerer) responseType(op *openapi.Operation) (tsast.TypeExpr, error) {
	statuses := append([]string(nil), op.Responses.Keys()...)
	sort.Strings(statuses)
	for _, status := range statuses {
		if !strings.HasPrefix(status, "2") {
			continue
		}
		resp, _ := op.Responses.Get(status)
		if resp.Ref != "" {
			resolved, err := l.resolver.Response(resp.Ref)
			if err != nil {
				return nil, err
			}
			resp = resolved
		}
		if schema := resp.JSONContent(); schema != nil {
			return l.Type(schema)
		}
		return nil, nil
	}
	return nil, nil
}

// pathLiteral rewrites {param} segments into TS template substitutions
// keyed by the camel-cased argument name.
func pathLiteral(path string, params paramGroups) string {
	argByWire := make(map[string]string, len(params.path))
	for _, p := range params.path {
		argByWire[p.data.WireName] = p.data.Name
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			b.WriteString(path)
			return b.String()
		}
		close := strings.IndexByte(path[open:], '}')
		if close < 0 {
			b.WriteString(path)
			return b.String()
		}
		wire := path[open+1 : open+close]
		arg, ok := argByWire[wire]
		if !ok {
			arg = naming.Identifier(wire, naming.Camel)
		}
		b.WriteString(path[:open])
		fmt.Fprintf(&b, "${encodeURIComponent(String(%s))}", arg)
		path = path[open+close+1:]
	}
}

func bodyTemplate(verb string) string {
	switch strings.ToLower(verb) {
	case "get":
		return "method_get"
	case "post", "put", "patch":
		return "method_mutation"
	case "delete":
		return "method_delete"
	default:
		return "method_default"
	}
}

func methodDocs(op *openapi.Operation) string {
	var parts []string
	if op.Summary != "" {
		parts = append(parts, op.Summary)
	}
	if op.Description != "" && op.Description != op.Summary {
		parts = append(parts, op.Description)
	}
	if op.Deprecated {
		parts = append(parts, "@deprecated")
	}
	return strings.Join(parts, "\n")
}

func promiseOf(payload tsast.TypeExpr) tsast.TypeExpr {
	return &tsast.Reference{
		Name: "Promise",
		TypeArgs: []tsast.TypeExpr{
			&tsast.Reference{Name: "ApiResponse", TypeArgs: []tsast.TypeExpr{payload}},
		},
	}
}

// collectClassRefs gathers the model names a class mentions, skipping
// runtime and global names.
func collectClassRefs(class *APIClass) []string {
	skip := map[string]bool{
		"Promise": true, "ApiResponse": true, "Blob": true,
		"Record": true, "Partial": true,
	}
	set := make(map[string]bool)
	for _, plan := range class.Methods {
		for _, p := range plan.Method.Params {
			for _, ref := range tsast.CollectRefs(p.Type) {
				if !skip[ref] {
					set[ref] = true
				}
			}
		}
		for _, ref := range tsast.CollectRefs(plan.Method.Return) {
			if !skip[ref] {
				set[ref] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
