package standings

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/chisports/gmengine/go/internal/rpcutil"
)

// ConnectClient calls SimulateSeason over Connect with the JSON codec.
type ConnectClient struct {
	client *connect.Client[SimulateSeasonRequest, SimulateSeasonResponse]
}

func NewConnectClient(httpClient connect.HTTPClient, baseURL string) *ConnectClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	url := strings.TrimRight(baseURL, "/") + rpcutil.Procedure(ServiceName, "SimulateSeason")
	return &ConnectClient{
		client: connect.NewClient[SimulateSeasonRequest, SimulateSeasonResponse](httpClient, url, rpcutil.ClientOptions()...),
	}
}

func (c *ConnectClient) SimulateSeason(ctx context.Context, req *SimulateSeasonRequest) (*SimulateSeasonResponse, error) {
	res, err := c.client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
