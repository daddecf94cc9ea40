// Copyright 2025 torrentctl
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/torrentctl/transmission-remote/metainfo"
)

// Each daemon method maps to one function: a fixed method string plus a
// typed argument payload, routed through the dispatcher. Methods whose
// response carries data use Call; fire-and-forget mutations use Exec.

// TorrentGet fetches the requested fields for a set of torrents.
func (c *Client) TorrentGet(ctx context.Context, req TorrentGetRequest) (*TorrentGetResponse, error) {
	var resp TorrentGetResponse
	if err := c.Call(ctx, "torrent-get", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TorrentAdd submits a torrent by base64 metainfo or by a filename/URL
// the daemon can resolve.
func (c *Client) TorrentAdd(ctx context.Context, req TorrentAddRequest) (*TorrentAddResponse, error) {
	var resp TorrentAddResponse
	if err := c.Call(ctx, "torrent-add", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddTorrentFile reads a local .torrent file, verifies that it parses,
// and submits its contents to the daemon. downloadDir may be empty to
// use the daemon's default.
func (c *Client) AddTorrentFile(ctx context.Context, path, downloadDir string) (*TorrentAddResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rpc: cannot read torrent file: %w", err)
	}
	summary, err := metainfo.ParseSummary(data)
	if err != nil {
		return nil, fmt.Errorf("rpc: invalid torrent file %q: %w", path, err)
	}
	if summary == nil {
		return nil, fmt.Errorf("rpc: %q is not a torrent file", path)
	}
	return c.TorrentAdd(ctx, TorrentAddRequest{
		Metainfo:    base64.StdEncoding.EncodeToString(data),
		DownloadDir: downloadDir,
	})
}

// TorrentRemove removes torrents, optionally deleting their data.
func (c *Client) TorrentRemove(ctx context.Context, ids []interface{}, deleteLocalData bool) error {
	return c.Exec(ctx, "torrent-remove", torrentRemoveRequest{
		IDs:             ids,
		DeleteLocalData: deleteLocalData,
	})
}

// TorrentSet changes mutable torrent properties.
func (c *Client) TorrentSet(ctx context.Context, req TorrentSetRequest) error {
	return c.Exec(ctx, "torrent-set", req)
}

// TorrentSetLocation moves or points torrents at a new location.
func (c *Client) TorrentSetLocation(ctx context.Context, ids []interface{}, location string, move bool) error {
	return c.Exec(ctx, "torrent-set-location", torrentSetLocationRequest{
		IDs:      ids,
		Location: location,
		Move:     move,
	})
}

// TorrentRenamePath renames a file or directory inside one torrent.
func (c *Client) TorrentRenamePath(ctx context.Context, id interface{}, path, name string) (*TorrentRenamePathResponse, error) {
	var resp TorrentRenamePathResponse
	err := c.Call(ctx, "torrent-rename-path", torrentRenamePathRequest{
		IDs:  []interface{}{id},
		Path: path,
		Name: name,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// TorrentStart starts torrents, honoring the queue.
func (c *Client) TorrentStart(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "torrent-start", torrentIDsRequest{IDs: ids})
}

// TorrentStartNow starts torrents immediately, bypassing the queue.
func (c *Client) TorrentStartNow(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "torrent-start-now", torrentIDsRequest{IDs: ids})
}

// TorrentStop pauses torrents.
func (c *Client) TorrentStop(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "torrent-stop", torrentIDsRequest{IDs: ids})
}

// TorrentVerify queues torrents for local data verification.
func (c *Client) TorrentVerify(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "torrent-verify", torrentIDsRequest{IDs: ids})
}

// TorrentReannounce re-announces torrents to their trackers now.
func (c *Client) TorrentReannounce(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "torrent-reannounce", torrentIDsRequest{IDs: ids})
}

// QueueMoveTop moves torrents to the front of the queue.
func (c *Client) QueueMoveTop(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "queue-move-top", torrentIDsRequest{IDs: ids})
}

// QueueMoveUp moves torrents one step up in the queue.
func (c *Client) QueueMoveUp(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "queue-move-up", torrentIDsRequest{IDs: ids})
}

// QueueMoveDown moves torrents one step down in the queue.
func (c *Client) QueueMoveDown(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "queue-move-down", torrentIDsRequest{IDs: ids})
}

// QueueMoveBottom moves torrents to the back of the queue.
func (c *Client) QueueMoveBottom(ctx context.Context, ids []interface{}) error {
	return c.Exec(ctx, "queue-move-bottom", torrentIDsRequest{IDs: ids})
}

// SessionGet fetches the daemon's session settings.
func (c *Client) SessionGet(ctx context.Context) (*SessionGetResponse, error) {
	var resp SessionGetResponse
	if err := c.Call(ctx, "session-get", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionSet changes daemon session settings.
func (c *Client) SessionSet(ctx context.Context, req SessionSetRequest) error {
	return c.Exec(ctx, "session-set", req)
}

// SessionStats fetches transfer statistics for the whole session.
func (c *Client) SessionStats(ctx context.Context) (*SessionStatsResponse, error) {
	var resp SessionStatsResponse
	if err := c.Call(ctx, "session-stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FreeSpace reports how much space is available in a daemon-side
// directory.
func (c *Client) FreeSpace(ctx context.Context, path string) (*FreeSpaceResponse, error) {
	var resp FreeSpaceResponse
	if err := c.Call(ctx, "free-space", freeSpaceRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PortTest asks the daemon to probe whether its peer port is reachable
// from the outside.
func (c *Client) PortTest(ctx context.Context) (*PortTestResponse, error) {
	var resp PortTestResponse
	if err := c.Call(ctx, "port-test", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BlocklistUpdate tells the daemon to refresh its blocklist and returns
// the new rule count.
func (c *Client) BlocklistUpdate(ctx context.Context) (*BlocklistUpdateResponse, error) {
	var resp BlocklistUpdateResponse
	if err := c.Call(ctx, "blocklist-update", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
