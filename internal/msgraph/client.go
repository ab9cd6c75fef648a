package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Graph client that authorizes requests with ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource) *Client {
	return &Client{httpClient: oauth2.NewClient(ctx, ts), baseURL: graphBaseURL}
}

// NewClientWithHTTP uses an already authorized http.Client against baseURL.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// User is the subset of a Graph user that the roster needs.
type User struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Department     string `json:"department"`
	Mail           string `json:"mail"`
	EmployeeID     string `json:"employeeId"`
	AccountEnabled *bool  `json:"accountEnabled"`
}

// usersResponse is the Graph API paged response for users.
type usersResponse struct {
	Value    []User `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// ListUsers fetches every user in the directory, following nextLink pages.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	q := url.Values{}
	q.Set("$select", "id,displayName,department,mail,employeeId,accountEnabled")
	q.Set("$top", "999")
	endpoint := c.baseURL + "/users?" + q.Encode()

	var all []User
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph API request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error %d: %s", resp.StatusCode, string(body))
		}

		var page usersResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding graph response: %w", err)
		}

		all = append(all, page.Value...)
		endpoint = page.NextLink
	}
	return all, nil
}
