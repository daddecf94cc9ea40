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

// Package rpc implements a client for the Transmission daemon's
// HTTP/JSON control protocol, including the 409 session-token handshake.
package rpc

import "encoding/json"

// requestEnvelope is the exact HTTP body shape for every RPC call.
type requestEnvelope struct {
	Method    string      `json:"method"`
	Arguments interface{} `json:"arguments,omitempty"`
}

// responseEnvelope is the exact 200-response shape. The daemon also
// embeds a "result" success string alongside arguments; the dispatcher
// deliberately does not model it and treats decode success as logical
// success, matching long-standing client behavior.
type responseEnvelope struct {
	Arguments json.RawMessage `json:"arguments"`
}

// Transmission torrent status values as reported in Torrent.Status.
const (
	TorrentStatusStopped      = 0 // Torrent is stopped
	TorrentStatusQueuedVerify = 1 // Queued to check files
	TorrentStatusVerifying    = 2 // Checking files
	TorrentStatusQueuedDown   = 3 // Queued to download
	TorrentStatusDownloading  = 4 // Downloading
	TorrentStatusQueuedSeed   = 5 // Queued to seed
	TorrentStatusSeeding      = 6 // Seeding
)

// TorrentGetRequest represents the arguments for torrent-get.
// IDs entries may be numeric ids, hash strings, or "recently-active";
// an empty IDs slice addresses every torrent.
type TorrentGetRequest struct {
	Fields []string      `json:"fields"`
	IDs    []interface{} `json:"ids,omitempty"`
}

// TorrentGetResponse represents the response for torrent-get.
type TorrentGetResponse struct {
	Torrents []Torrent `json:"torrents"`
	Removed  []int64   `json:"removed,omitempty"`
}

// Torrent carries the torrent-get fields this client consumes. Dates are
// Unix seconds as the daemon sends them.
type Torrent struct {
	ID         int64  `json:"id"`
	HashString string `json:"hashString"`
	Name       string `json:"name"`

	Status        int64   `json:"status"`
	Error         int64   `json:"error"`
	ErrorString   string  `json:"errorString"`
	QueuePosition int64   `json:"queuePosition"`
	IsFinished    bool    `json:"isFinished"`
	IsStalled     bool    `json:"isStalled"`
	LeftUntilDone int64   `json:"leftUntilDone"`
	PercentDone   float64 `json:"percentDone"`
	RecheckProg   float64 `json:"recheckProgress"`
	SizeWhenDone  int64   `json:"sizeWhenDone"`
	TotalSize     int64   `json:"totalSize"`

	AddedDate    int64   `json:"addedDate"`
	ActivityDate int64   `json:"activityDate"`
	ETA          int64   `json:"eta"`
	RateDownload int64   `json:"rateDownload"`
	RateUpload   int64   `json:"rateUpload"`
	Downloaded   int64   `json:"downloadedEver"`
	Uploaded     int64   `json:"uploadedEver"`
	UploadRatio  float64 `json:"uploadRatio"`

	PeersConnected     int64 `json:"peersConnected"`
	PeersGettingFromUs int64 `json:"peersGettingFromUs"`
	PeersSendingToUs   int64 `json:"peersSendingToUs"`

	DownloadDir string     `json:"downloadDir"`
	Files       []File     `json:"files"`
	FileStats   []FileStat `json:"fileStats"`
	Priorities  []int64    `json:"priorities"`
	Wanted      []bool     `json:"wanted"`

	Trackers []Tracker `json:"trackers"`
	Labels   []string  `json:"labels"`

	MagnetLink        string `json:"magnetLink"`
	BandwidthPriority int64  `json:"bandwidthPriority"`
}

// File represents a file within a torrent.
type File struct {
	BytesCompleted int64  `json:"bytesCompleted"`
	Length         int64  `json:"length"`
	Name           string `json:"name"`
}

// FileStat represents per-file transfer state.
type FileStat struct {
	BytesCompleted int64 `json:"bytesCompleted"`
	Wanted         bool  `json:"wanted"`
	Priority       int64 `json:"priority"`
}

// Tracker represents a tracker attached to a torrent.
type Tracker struct {
	Announce string `json:"announce"`
	ID       int64  `json:"id"`
	Scrape   string `json:"scrape"`
	Tier     int64  `json:"tier"`
}

// TorrentAddRequest represents the arguments for torrent-add. Exactly
// one of Metainfo (base64 .torrent contents) or Filename (path or URL
// the daemon can reach) must be set.
type TorrentAddRequest struct {
	Metainfo    string   `json:"metainfo,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	DownloadDir string   `json:"download-dir,omitempty"`
	Paused      bool     `json:"paused,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	PeerLimit   int64    `json:"peer-limit,omitempty"`
}

// TorrentAddResponse represents the response for torrent-add.
type TorrentAddResponse struct {
	TorrentAdded     *TorrentAdded `json:"torrent-added,omitempty"`
	TorrentDuplicate *TorrentAdded `json:"torrent-duplicate,omitempty"`
}

// TorrentAdded identifies a torrent the daemon accepted or already had.
type TorrentAdded struct {
	ID         int64  `json:"id"`
	HashString string `json:"hashString"`
	Name       string `json:"name"`
}

// torrentIDsRequest addresses a set of torrents for the fire-and-forget
// action methods (start, stop, verify, reannounce, queue moves).
type torrentIDsRequest struct {
	IDs []interface{} `json:"ids,omitempty"`
}

// torrentRemoveRequest represents the arguments for torrent-remove.
type torrentRemoveRequest struct {
	IDs             []interface{} `json:"ids,omitempty"`
	DeleteLocalData bool          `json:"delete-local-data,omitempty"`
}

// TorrentSetRequest represents the arguments for torrent-set. Pointer
// fields distinguish "leave unchanged" from zero values.
type TorrentSetRequest struct {
	IDs []interface{} `json:"ids,omitempty"`

	BandwidthPriority   *int64   `json:"bandwidthPriority,omitempty"`
	DownloadLimit       *int64   `json:"downloadLimit,omitempty"`
	DownloadLimited     *bool    `json:"downloadLimited,omitempty"`
	UploadLimit         *int64   `json:"uploadLimit,omitempty"`
	UploadLimited       *bool    `json:"uploadLimited,omitempty"`
	HonorsSessionLimits *bool    `json:"honorsSessionLimits,omitempty"`
	PeerLimit           *int64   `json:"peer-limit,omitempty"`
	SeedIdleLimit       *int64   `json:"seedIdleLimit,omitempty"`
	SeedIdleMode        *int64   `json:"seedIdleMode,omitempty"`
	SeedRatioLimit      *float64 `json:"seedRatioLimit,omitempty"`
	SeedRatioMode       *int64   `json:"seedRatioMode,omitempty"`
	QueuePosition       *int64   `json:"queuePosition,omitempty"`

	FilesWanted    []int64  `json:"files-wanted,omitempty"`
	FilesUnwanted  []int64  `json:"files-unwanted,omitempty"`
	PriorityHigh   []int64  `json:"priority-high,omitempty"`
	PriorityLow    []int64  `json:"priority-low,omitempty"`
	PriorityNormal []int64  `json:"priority-normal,omitempty"`
	Labels         []string `json:"labels,omitempty"`
	TrackerAdd     []string `json:"trackerAdd,omitempty"`
	TrackerRemove  []int64  `json:"trackerRemove,omitempty"`
}

// torrentSetLocationRequest represents the arguments for
// torrent-set-location.
type torrentSetLocationRequest struct {
	IDs      []interface{} `json:"ids,omitempty"`
	Location string        `json:"location"`
	Move     bool          `json:"move,omitempty"`
}

// torrentRenamePathRequest represents the arguments for
// torrent-rename-path. The daemon requires exactly one torrent id.
type torrentRenamePathRequest struct {
	IDs  []interface{} `json:"ids"`
	Path string        `json:"path"`
	Name string        `json:"name"`
}

// TorrentRenamePathResponse echoes the rename the daemon applied.
type TorrentRenamePathResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// SessionGetResponse represents the response for session-get.
type SessionGetResponse struct {
	AltSpeedDown              int64   `json:"alt-speed-down"`
	AltSpeedEnabled           bool    `json:"alt-speed-enabled"`
	AltSpeedUp                int64   `json:"alt-speed-up"`
	BlocklistEnabled          bool    `json:"blocklist-enabled"`
	BlocklistSize             int64   `json:"blocklist-size"`
	BlocklistURL              string  `json:"blocklist-url"`
	ConfigDir                 string  `json:"config-dir"`
	DHT                       bool    `json:"dht-enabled"`
	DownloadDir               string  `json:"download-dir"`
	DownloadDirFreeSpace      int64   `json:"download-dir-free-space"`
	DownloadQueueEnabled      bool    `json:"download-queue-enabled"`
	DownloadQueueSize         int64   `json:"download-queue-size"`
	Encryption                string  `json:"encryption"`
	IdleSeedingLimit          int64   `json:"idle-seeding-limit"`
	IdleSeedingLimitEnabled   bool    `json:"idle-seeding-limit-enabled"`
	IncompleteDir             string  `json:"incomplete-dir"`
	IncompleteDirEnabled      bool    `json:"incomplete-dir-enabled"`
	LPD                       bool    `json:"lpd-enabled"`
	PeerLimitGlobal           int64   `json:"peer-limit-global"`
	PeerLimitPerTorrent       int64   `json:"peer-limit-per-torrent"`
	PeerPort                  int64   `json:"peer-port"`
	PeerPortRandomOnStart     bool    `json:"peer-port-random-on-start"`
	PEX                       bool    `json:"pex-enabled"`
	PortForwardingEnabled     bool    `json:"port-forwarding-enabled"`
	QueueStalledEnabled       bool    `json:"queue-stalled-enabled"`
	QueueStalledMinutes       int64   `json:"queue-stalled-minutes"`
	RenamePartialFiles        bool    `json:"rename-partial-files"`
	RPCVersion                int64   `json:"rpc-version"`
	RPCVersionMinimum         int64   `json:"rpc-version-minimum"`
	SeedQueueEnabled          bool    `json:"seed-queue-enabled"`
	SeedQueueSize             int64   `json:"seed-queue-size"`
	SeedRatioLimit            float64 `json:"seedRatioLimit"`
	SeedRatioLimited          bool    `json:"seedRatioLimited"`
	SpeedLimitDown            int64   `json:"speed-limit-down"`
	SpeedLimitDownEnabled     bool    `json:"speed-limit-down-enabled"`
	SpeedLimitUp              int64   `json:"speed-limit-up"`
	SpeedLimitUpEnabled       bool    `json:"speed-limit-up-enabled"`
	StartAddedTorrents        bool    `json:"start-added-torrents"`
	TrashOriginalTorrentFiles bool    `json:"trash-original-torrent-files"`
	UTP                       bool    `json:"utp-enabled"`
	Version                   string  `json:"version"`
}

// SessionSetRequest represents the arguments for session-set. Pointer
// fields distinguish "leave unchanged" from zero values.
type SessionSetRequest struct {
	AltSpeedDown              *int64   `json:"alt-speed-down,omitempty"`
	AltSpeedEnabled           *bool    `json:"alt-speed-enabled,omitempty"`
	AltSpeedUp                *int64   `json:"alt-speed-up,omitempty"`
	BlocklistEnabled          *bool    `json:"blocklist-enabled,omitempty"`
	BlocklistURL              *string  `json:"blocklist-url,omitempty"`
	DHT                       *bool    `json:"dht-enabled,omitempty"`
	DownloadDir               *string  `json:"download-dir,omitempty"`
	DownloadQueueEnabled      *bool    `json:"download-queue-enabled,omitempty"`
	DownloadQueueSize         *int64   `json:"download-queue-size,omitempty"`
	Encryption                *string  `json:"encryption,omitempty"`
	IdleSeedingLimit          *int64   `json:"idle-seeding-limit,omitempty"`
	IdleSeedingLimitEnabled   *bool    `json:"idle-seeding-limit-enabled,omitempty"`
	IncompleteDir             *string  `json:"incomplete-dir,omitempty"`
	IncompleteDirEnabled      *bool    `json:"incomplete-dir-enabled,omitempty"`
	LPD                       *bool    `json:"lpd-enabled,omitempty"`
	PeerLimitGlobal           *int64   `json:"peer-limit-global,omitempty"`
	PeerLimitPerTorrent       *int64   `json:"peer-limit-per-torrent,omitempty"`
	PeerPort                  *int64   `json:"peer-port,omitempty"`
	PeerPortRandomOnStart     *bool    `json:"peer-port-random-on-start,omitempty"`
	PEX                       *bool    `json:"pex-enabled,omitempty"`
	PortForwardingEnabled     *bool    `json:"port-forwarding-enabled,omitempty"`
	QueueStalledEnabled       *bool    `json:"queue-stalled-enabled,omitempty"`
	QueueStalledMinutes       *int64   `json:"queue-stalled-minutes,omitempty"`
	RenamePartialFiles        *bool    `json:"rename-partial-files,omitempty"`
	SeedQueueEnabled          *bool    `json:"seed-queue-enabled,omitempty"`
	SeedQueueSize             *int64   `json:"seed-queue-size,omitempty"`
	SeedRatioLimit            *float64 `json:"seedRatioLimit,omitempty"`
	SeedRatioLimited          *bool    `json:"seedRatioLimited,omitempty"`
	SpeedLimitDown            *int64   `json:"speed-limit-down,omitempty"`
	SpeedLimitDownEnabled     *bool    `json:"speed-limit-down-enabled,omitempty"`
	SpeedLimitUp              *int64   `json:"speed-limit-up,omitempty"`
	SpeedLimitUpEnabled       *bool    `json:"speed-limit-up-enabled,omitempty"`
	StartAddedTorrents        *bool    `json:"start-added-torrents,omitempty"`
	TrashOriginalTorrentFiles *bool    `json:"trash-original-torrent-files,omitempty"`
	UTP                       *bool    `json:"utp-enabled,omitempty"`
}

// SessionStatsResponse represents the response for session-stats.
type SessionStatsResponse struct {
	ActiveTorrentCount int64        `json:"activeTorrentCount"`
	DownloadSpeed      int64        `json:"downloadSpeed"`
	PausedTorrentCount int64        `json:"pausedTorrentCount"`
	TorrentCount       int64        `json:"torrentCount"`
	UploadSpeed        int64        `json:"uploadSpeed"`
	CumulativeStats    SessionStats `json:"cumulative-stats"`
	CurrentStats       SessionStats `json:"current-stats"`
}

// SessionStats is one bucket of session-stats counters.
type SessionStats struct {
	UploadedBytes   int64 `json:"uploadedBytes"`
	DownloadedBytes int64 `json:"downloadedBytes"`
	FilesAdded      int64 `json:"filesAdded"`
	SessionCount    int64 `json:"sessionCount"`
	SecondsActive   int64 `json:"secondsActive"`
}

// freeSpaceRequest represents the arguments for free-space.
type freeSpaceRequest struct {
	Path string `json:"path"`
}

// FreeSpaceResponse represents the response for free-space.
type FreeSpaceResponse struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size-bytes"`
}

// PortTestResponse represents the response for port-test.
type PortTestResponse struct {
	PortIsOpen bool `json:"port-is-open"`
}

// BlocklistUpdateResponse represents the response for blocklist-update.
type BlocklistUpdateResponse struct {
	BlocklistSize int64 `json:"blocklist-size"`
}
