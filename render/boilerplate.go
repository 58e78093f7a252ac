// boilerplate.go writes the generated client's shared scaffolding:
// the Client struct, constructor, options, and request helpers.

package render

import "bytes"

func writeClientStruct(buf *bytes.Buffer) {
	buf.WriteString("// Client is the API client.\n")
	buf.WriteString("type Client struct {\n")
	buf.WriteString("\t// BaseURL is the base URL for API requests.\n")
	buf.WriteString("\tBaseURL string\n")
	buf.WriteString("\t// HTTPClient is the HTTP client to use for requests.\n")
	buf.WriteString("\tHTTPClient *http.Client\n")
	buf.WriteString("\t// UserAgent is the User-Agent header value for requests.\n")
	buf.WriteString("\tUserAgent string\n")
	buf.WriteString("\t// RequestEditors are functions that can modify requests before sending.\n")
	buf.WriteString("\tRequestEditors []RequestEditorFn\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// RequestEditorFn is a function that can modify an HTTP request.\n")
	buf.WriteString("type RequestEditorFn func(ctx context.Context, req *http.Request) error\n\n")

	buf.WriteString("// ClientOption is a function that configures a Client.\n")
	buf.WriteString("type ClientOption func(*Client) error\n\n")
}

func writeClientConstructor(buf *bytes.Buffer) {
	buf.WriteString("// NewClient creates a new API client.\n")
	buf.WriteString("func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {\n")
	buf.WriteString("\tc := &Client{\n")
	buf.WriteString("\t\tBaseURL:    strings.TrimSuffix(baseURL, \"/\"),\n")
	buf.WriteString("\t\tHTTPClient: http.DefaultClient,\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tfor _, opt := range opts {\n")
	buf.WriteString("\t\tif err := opt(c); err != nil {\n")
	buf.WriteString("\t\t\treturn nil, err\n")
	buf.WriteString("\t\t}\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn c, nil\n")
	buf.WriteString("}\n\n")
}

func writeClientOptions(buf *bytes.Buffer) {
	buf.WriteString("// WithHTTPClient sets the HTTP client.\n")
	buf.WriteString("func WithHTTPClient(client *http.Client) ClientOption {\n")
	buf.WriteString("\treturn func(c *Client) error {\n")
	buf.WriteString("\t\tc.HTTPClient = client\n")
	buf.WriteString("\t\treturn nil\n")
	buf.WriteString("\t}\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// WithUserAgent sets the User-Agent header value.\n")
	buf.WriteString("func WithUserAgent(ua string) ClientOption {\n")
	buf.WriteString("\treturn func(c *Client) error {\n")
	buf.WriteString("\t\tc.UserAgent = ua\n")
	buf.WriteString("\t\treturn nil\n")
	buf.WriteString("\t}\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// WithRequestEditorFn adds a request editor.\n")
	buf.WriteString("func WithRequestEditorFn(fn RequestEditorFn) ClientOption {\n")
	buf.WriteString("\treturn func(c *Client) error {\n")
	buf.WriteString("\t\tc.RequestEditors = append(c.RequestEditors, fn)\n")
	buf.WriteString("\t\treturn nil\n")
	buf.WriteString("\t}\n")
	buf.WriteString("}\n\n")
}

func writeClientHelpers(buf *bytes.Buffer) {
	buf.WriteString("// newRequest builds an HTTP request with the client's defaults applied.\n")
	buf.WriteString("func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {\n")
	buf.WriteString("\treq, err := http.NewRequestWithContext(ctx, method, rawURL, body)\n")
	buf.WriteString("\tif err != nil {\n")
	buf.WriteString("\t\treturn nil, err\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tif c.UserAgent != \"\" {\n")
	buf.WriteString("\t\treq.Header.Set(\"User-Agent\", c.UserAgent)\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tif body != nil {\n")
	buf.WriteString("\t\treq.Header.Set(\"Content-Type\", \"application/json\")\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tfor _, edit := range c.RequestEditors {\n")
	buf.WriteString("\t\tif err := edit(ctx, req); err != nil {\n")
	buf.WriteString("\t\t\treturn nil, err\n")
	buf.WriteString("\t\t}\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn req, nil\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// jsonBody marshals a request body value.\n")
	buf.WriteString("func jsonBody(v any) (io.Reader, error) {\n")
	buf.WriteString("\tdata, err := json.Marshal(v)\n")
	buf.WriteString("\tif err != nil {\n")
	buf.WriteString("\t\treturn nil, err\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn bytes.NewReader(data), nil\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// decodeJSON decodes a JSON response body into out.\n")
	buf.WriteString("func decodeJSON(resp *http.Response, out any) error {\n")
	buf.WriteString("\tdefer resp.Body.Close()\n")
	buf.WriteString("\tdata, err := io.ReadAll(resp.Body)\n")
	buf.WriteString("\tif err != nil {\n")
	buf.WriteString("\t\treturn err\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\tif len(data) == 0 {\n")
	buf.WriteString("\t\treturn nil\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn json.Unmarshal(data, out)\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// APIError reports a non-success HTTP status.\n")
	buf.WriteString("type APIError struct {\n")
	buf.WriteString("\tStatusCode int\n")
	buf.WriteString("\tBody       []byte\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// Error implements the error interface.\n")
	buf.WriteString("func (e *APIError) Error() string {\n")
	buf.WriteString("\treturn fmt.Sprintf(\"unexpected status %d\", e.StatusCode)\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// errorFromResponse drains a non-success response into an APIError.\n")
	buf.WriteString("func errorFromResponse(resp *http.Response) error {\n")
	buf.WriteString("\tdefer resp.Body.Close()\n")
	buf.WriteString("\tdata, _ := io.ReadAll(resp.Body)\n")
	buf.WriteString("\treturn &APIError{StatusCode: resp.StatusCode, Body: data}\n")
	buf.WriteString("}\n\n")

	buf.WriteString("// queryURL joins the base URL, path, and encoded query.\n")
	buf.WriteString("func queryURL(base, path string, query url.Values) string {\n")
	buf.WriteString("\tu := base + path\n")
	buf.WriteString("\tif len(query) > 0 {\n")
	buf.WriteString("\t\tu += \"?\" + query.Encode()\n")
	buf.WriteString("\t}\n")
	buf.WriteString("\treturn u\n")
	buf.WriteString("}\n")
}
