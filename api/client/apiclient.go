package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"insights-client/api"
	apitypes "insights-client/api/types"
	"insights-client/types"

	logging "github.com/ipfs/go-log/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/xerrors"
)

var log = logging.Logger("portal-client")

const (
	sharingRestPath   = "/sharing/rest"
	communitySelfPath = sharingRestPath + "/community/self"
	requestTimeout    = 60 * time.Second
)

type portalConn struct {
	client    *http.Client
	portalUrl string
	token     string
	selfInfo  *apitypes.SelfResp
}

// NewPortalApi connects to the portal's sharing REST API. The returned
// closer releases idle connections.
func NewPortalApi(ctx context.Context, portalUrl string, token string) (api.PortalApi, func(), error) {
	if portalUrl == "" {
		return nil, nil, xerrors.New("invalid portal url")
	}

	conn := &portalConn{
		client:    &http.Client{Timeout: requestTimeout},
		portalUrl: strings.TrimRight(strings.ToLower(portalUrl), "/"),
		token:     token,
	}
	return conn, conn.client.CloseIdleConnections, nil
}

// postForm sends a form-encoded POST the way every portal write
// endpoint expects: f=json plus the token, errors inside an HTTP 200.
func (c *portalConn) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("f", "json")
	if c.token != "" {
		form.Set("token", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return xerrors.Errorf(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *portalConn) getJson(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("f", "json")
	if c.token != "" {
		params.Set("token", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return xerrors.Errorf(err.Error())
	}

	return c.do(req, out)
}

func (c *portalConn) do(req *http.Request, out interface{}) error {
	log.Debugf("%s %s", req.Method, req.URL.Path)

	resp, err := c.client.Do(req)
	if err != nil {
		return xerrors.Errorf(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return xerrors.Errorf(err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return xerrors.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err = portalFault(body); err != nil {
		return err
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return nil
	}
	if out != nil {
		if err = jsoniter.Unmarshal(body, out); err != nil {
			return xerrors.Errorf(err.Error())
		}
	}
	return nil
}

// portalFault decodes the vendor error envelope, if present.
func portalFault(body []byte) error {
	node := jsoniter.Get(body, "error")
	if node.ValueType() != jsoniter.ObjectValue {
		return nil
	}

	var pe apitypes.PortalError
	if err := jsoniter.Unmarshal([]byte(node.ToString()), &pe); err != nil {
		return types.Wrapf(types.ErrPortalResponse, "undecodable error envelope: %s", string(body))
	}
	return types.Wrap(types.ErrPortalResponse, &pe)
}
