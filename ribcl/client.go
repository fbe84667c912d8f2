/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ribcl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/comcast/hpilo-exporter/common"
	"github.com/comcast/hpilo-exporter/config"
	"github.com/comcast/hpilo-exporter/middleware/logging"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const scriptPath = "/ribcl"

// Client issues RIBCL requests against a single controller.
type Client struct {
	host        string
	target      string
	credProfile string
	user        string
	pass        string
	client      *retryablehttp.Client
}

// NewClient wires a client for one controller. host is the base url
// including scheme, target the registry name used as credential cache
// key. user and pass override process level defaults when non empty.
func NewClient(host, target, credProfile, user, pass string, client *retryablehttp.Client) *Client {
	return &Client{
		host:        host,
		target:      target,
		credProfile: credProfile,
		user:        user,
		pass:        pass,
		client:      client,
	}
}

// credentials resolves in order: vault managed credentials for the
// target, per target static credentials, process wide defaults.
func (c *Client) credentials() (string, string) {
	if creds, ok := common.IloCreds.Get(c.target); ok {
		return creds.User, creds.Pass
	}
	if c.user != "" {
		return c.user, c.pass
	}
	return config.GetConfig().User, config.GetConfig().Pass
}

// Fetch returns a task function that retrieves and validates the
// response body for one request kind.
func (c *Client) Fetch(ctx context.Context, kind Kind) func() ([]byte, error) {
	cmd, ok := commands[kind]
	return func() ([]byte, error) {
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupportedRequest, kind)
		}
		return c.do(ctx, cmd)
	}
}

// ServerName retrieves the administrator assigned server name.
func (c *Client) ServerName(ctx context.Context) (string, error) {
	body, err := c.do(ctx, command{tag: cmdGetServerName, section: sectionServerInfo})
	if err != nil {
		return "", err
	}
	return DecodeServerName(body)
}

// ProductName retrieves the server hardware model.
func (c *Client) ProductName(ctx context.Context) (string, error) {
	body, err := c.do(ctx, command{tag: cmdGetProductName, section: sectionServerInfo})
	if err != nil {
		return "", err
	}
	return DecodeProductName(body)
}

// do runs one command, retrying a single time with refreshed vault
// credentials when the firmware rejects the login.
func (c *Client) do(ctx context.Context, cmd command) ([]byte, error) {
	body, err := c.doOnce(ctx, cmd)
	if err != nil && errors.Is(err, ErrAuthFailed) && c.refreshCredentials(ctx) {
		return c.doOnce(ctx, cmd)
	}
	return body, err
}

func (c *Client) doOnce(ctx context.Context, cmd command) ([]byte, error) {
	user, pass := c.credentials()
	payload, err := BuildRequest(user, pass, cmd.section, cmd.tag)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.host+scriptPath, payload)
	if err != nil {
		return nil, fmt.Errorf("error building %s request for %s - %w", cmd.tag, c.target, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "text/xml")

	resp, err := common.DoRequest(c.client, req)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		common.EmptyAndCloseBody(resp)
		return nil, errorStatus(ErrAuthFailed, resp.Status, "http authentication rejected")
	default:
		common.EmptyAndCloseBody(resp)
		return nil, errorStatus(ErrUnreachable, resp.Status, "unexpected http status")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyError(err)
	}
	if err := CheckResponse(body); err != nil {
		return nil, err
	}
	return body, nil
}

// refreshCredentials replaces the cached vault credential for the
// target. Returns false when no vault client is wired or the lookup
// fails, in which case the original auth error stands.
func (c *Client) refreshCredentials(ctx context.Context) bool {
	if common.IloCreds.Vault == nil || c.credProfile == "" {
		return false
	}

	common.IloCreds.Remove(c.target)
	credential, err := common.IloCreds.GetCredentials(ctx, c.credProfile, c.target)
	if err != nil {
		zap.L().Error("error refreshing credentials from vault",
			zap.Error(err),
			zap.String("target", c.target),
			zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
		return false
	}
	common.IloCreds.Set(c.target, credential)
	return true
}
