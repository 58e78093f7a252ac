// ops.go renders one client method per operation declaration.

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/oasforge/oasforge/opmodel"
	"github.com/oasforge/oasforge/planner"
	"github.com/oasforge/oasforge/typemodel"
)

// methodParam is one rendered method argument.
type methodParam struct {
	goName  string
	expr    string
	pointer bool
	decl    opmodel.Parameter
}

func (r *Renderer) writeOperationMethod(buf *bytes.Buffer, decl planner.OperationDecl) error {
	op := decl.Operation
	params := r.methodParams(op)
	resultExpr, hasResult := r.successResult(op)

	r.writeMethodComment(buf, decl, op)

	fmt.Fprintf(buf, "func (c *Client) %s(ctx context.Context", decl.Symbol)
	for _, p := range params {
		fmt.Fprintf(buf, ", %s %s", p.goName, p.expr)
	}
	if op.RequestBody != nil {
		fmt.Fprintf(buf, ", payload %s", r.typeExpr(op.RequestBody.Content[0].Type))
	}
	if hasResult {
		fmt.Fprintf(buf, ") (%s, *http.Response, error) {\n", resultExpr)
		fmt.Fprintf(buf, "\tvar out %s\n", resultExpr)
	} else {
		buf.WriteString(") (*http.Response, error) {\n")
	}

	r.writePathExpansion(buf, op, params)
	r.writeQueryParams(buf, params)
	r.writeBody(buf, op, hasResult)
	r.writeRequest(buf, op, params, hasResult)
	r.writeResponseHandling(buf, op, hasResult)

	buf.WriteString("}\n\n")
	return nil
}

func (r *Renderer) writeMethodComment(buf *bytes.Buffer, decl planner.OperationDecl, op *opmodel.Operation) {
	if op.Summary != "" {
		fmt.Fprintf(buf, "// %s %s\n", decl.Symbol, firstLine(op.Summary))
		fmt.Fprintf(buf, "//\n// %s %s\n", op.Method, op.Path)
	} else {
		fmt.Fprintf(buf, "// %s invokes %s %s.\n", decl.Symbol, op.Method, op.Path)
	}
	if op.Deprecated {
		fmt.Fprintf(buf, "//\n// Deprecated: this operation is marked deprecated in the source document.\n")
	}
}

func (r *Renderer) methodParams(op *opmodel.Operation) []methodParam {
	params := make([]methodParam, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		expr := r.typeExpr(p.Type)
		pointer := false
		if !p.Required && expr[0] != '*' && expr[0] != '[' && expr != "any" {
			expr = "*" + expr
			pointer = true
		}
		params = append(params, methodParam{
			goName:  paramName(p.Name),
			expr:    expr,
			pointer: pointer,
			decl:    p,
		})
	}
	return params
}

// successResult picks the operation's primary success payload: the
// first declared 2xx response, falling back to the default response.
// The empty-body marker yields no result value at all.
func (r *Renderer) successResult(op *opmodel.Operation) (string, bool) {
	resp := successResponse(op)
	if resp == nil || len(resp.Content) == 0 {
		return "", false
	}
	id := resp.Content[0].Type
	if r.ir.Arena.Get(id).Kind == typemodel.KindEmpty {
		return "", false
	}
	return r.typeExpr(id), true
}

func successResponse(op *opmodel.Operation) *opmodel.Response {
	for i := range op.Responses {
		if strings.HasPrefix(op.Responses[i].Status, "2") {
			return &op.Responses[i]
		}
	}
	for i := range op.Responses {
		if op.Responses[i].Status == "default" {
			return &op.Responses[i]
		}
	}
	return nil
}

func (r *Renderer) writePathExpansion(buf *bytes.Buffer, op *opmodel.Operation, params []methodParam) {
	fmt.Fprintf(buf, "\tpath := %q\n", op.Path)
	for _, p := range params {
		if p.decl.In != opmodel.InPath {
			continue
		}
		fmt.Fprintf(buf, "\tpath = strings.ReplaceAll(path, \"{%s}\", url.PathEscape(fmt.Sprint(%s)))\n",
			p.decl.Name, p.goName)
	}
}

func (r *Renderer) writeQueryParams(buf *bytes.Buffer, params []methodParam) {
	buf.WriteString("\tquery := url.Values{}\n")
	for _, p := range params {
		if p.decl.In != opmodel.InQuery {
			continue
		}
		if p.pointer {
			fmt.Fprintf(buf, "\tif %s != nil {\n", p.goName)
			fmt.Fprintf(buf, "\t\tquery.Set(%q, fmt.Sprint(*%s))\n", p.decl.Name, p.goName)
			buf.WriteString("\t}\n")
		} else if !p.decl.Required {
			fmt.Fprintf(buf, "\tif %s != nil {\n", p.goName)
			fmt.Fprintf(buf, "\t\tquery.Set(%q, fmt.Sprint(%s))\n", p.decl.Name, p.goName)
			buf.WriteString("\t}\n")
		} else {
			fmt.Fprintf(buf, "\tquery.Set(%q, fmt.Sprint(%s))\n", p.decl.Name, p.goName)
		}
	}
}

func (r *Renderer) writeBody(buf *bytes.Buffer, op *opmodel.Operation, hasResult bool) {
	if op.RequestBody == nil {
		return
	}
	buf.WriteString("\tbody, err := jsonBody(payload)\n")
	buf.WriteString("\tif err != nil {\n")
	if hasResult {
		buf.WriteString("\t\treturn out, nil, err\n")
	} else {
		buf.WriteString("\t\treturn nil, err\n")
	}
	buf.WriteString("\t}\n")
}

func (r *Renderer) writeRequest(buf *bytes.Buffer, op *opmodel.Operation, params []methodParam, hasResult bool) {
	bodyArg := "nil"
	if op.RequestBody != nil {
		bodyArg = "body"
	}
	fmt.Fprintf(buf, "\treq, err := c.newRequest(ctx, %q, queryURL(c.BaseURL, path, query), %s)\n",
		op.Method, bodyArg)
	buf.WriteString("\tif err != nil {\n")
	if hasResult {
		buf.WriteString("\t\treturn out, nil, err\n")
	} else {
		buf.WriteString("\t\treturn nil, err\n")
	}
	buf.WriteString("\t}\n")

	for _, p := range params {
		switch p.decl.In {
		case opmodel.InHeader:
			r.writeHeaderParam(buf, p)
		case opmodel.InCookie:
			r.writeCookieParam(buf, p)
		}
	}
}

func (r *Renderer) writeHeaderParam(buf *bytes.Buffer, p methodParam) {
	if p.pointer {
		fmt.Fprintf(buf, "\tif %s != nil {\n", p.goName)
		fmt.Fprintf(buf, "\t\treq.Header.Set(%q, fmt.Sprint(*%s))\n", p.decl.Name, p.goName)
		buf.WriteString("\t}\n")
		return
	}
	fmt.Fprintf(buf, "\treq.Header.Set(%q, fmt.Sprint(%s))\n", p.decl.Name, p.goName)
}

func (r *Renderer) writeCookieParam(buf *bytes.Buffer, p methodParam) {
	value := fmt.Sprintf("fmt.Sprint(%s)", p.goName)
	if p.pointer {
		fmt.Fprintf(buf, "\tif %s != nil {\n", p.goName)
		fmt.Fprintf(buf, "\t\treq.AddCookie(&http.Cookie{Name: %q, Value: fmt.Sprint(*%s)})\n", p.decl.Name, p.goName)
		buf.WriteString("\t}\n")
		return
	}
	fmt.Fprintf(buf, "\treq.AddCookie(&http.Cookie{Name: %q, Value: %s})\n", p.decl.Name, value)
}

func (r *Renderer) writeResponseHandling(buf *bytes.Buffer, op *opmodel.Operation, hasResult bool) {
	buf.WriteString("\tresp, err := c.HTTPClient.Do(req)\n")
	buf.WriteString("\tif err != nil {\n")
	if hasResult {
		buf.WriteString("\t\treturn out, nil, err\n")
	} else {
		buf.WriteString("\t\treturn nil, err\n")
	}
	buf.WriteString("\t}\n")

	buf.WriteString("\tif resp.StatusCode < 200 || resp.StatusCode >= 300 {\n")
	if hasResult {
		buf.WriteString("\t\treturn out, resp, errorFromResponse(resp)\n")
	} else {
		buf.WriteString("\t\treturn resp, errorFromResponse(resp)\n")
	}
	buf.WriteString("\t}\n")

	if hasResult {
		buf.WriteString("\tif err := decodeJSON(resp, &out); err != nil {\n")
		buf.WriteString("\t\treturn out, resp, err\n")
		buf.WriteString("\t}\n")
		buf.WriteString("\treturn out, resp, nil\n")
	} else {
		buf.WriteString("\tresp.Body.Close()\n")
		buf.WriteString("\treturn resp, nil\n")
	}
}
