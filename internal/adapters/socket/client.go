package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client connects to the lor daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Lookup sends a lookup request. A miss returns Found false and no error.
func (c *Client) Lookup(query, locale string) (*LookupResult, error) {
	var result LookupResult
	if err := c.do(MethodLookup, LookupParams{Query: query, Locale: locale}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Autocomplete sends an autocomplete request. limit <= 0 uses the server default.
func (c *Client) Autocomplete(prefix string, limit int) ([]string, error) {
	var result AutocompleteResult
	if err := c.do(MethodAutocomplete, AutocompleteParams{Prefix: prefix, Limit: limit}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Disambiguation fetches a disambiguation set by ID.
func (c *Client) Disambiguation(id string) (*DisambiguationResult, error) {
	var result DisambiguationResult
	if err := c.do(MethodDisambiguation, DisambiguationParams{ID: id}, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(MethodHealth, nil, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reindex asks the daemon to rebuild from source with an extended timeout.
func (c *Client) Reindex() (*ReindexResult, error) {
	var result ReindexResult
	if err := c.do(MethodReindex, nil, &result, 120*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{ID: "1", Method: MethodShutdown}, 5*time.Second)
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// do calls method and decodes the result into out.
func (c *Client) do(method string, params, out any, timeout time.Duration) error {
	resp, err := c.call(Request{ID: "1", Method: method, Params: params}, timeout)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) call(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
