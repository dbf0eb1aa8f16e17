package torbox

import (
	"time"

	"github.com/google/uuid"
)

// StateQueued is the download state assigned to items that are still waiting in the
// service's queue. The active listings never report it.
const StateQueued = "queued"

// SeedingMode controls seeding after a torrent completes.
type SeedingMode int

const (
	SeedAuto   SeedingMode = 1
	SeedAlways SeedingMode = 2
	SeedNever  SeedingMode = 3
)

// PostProcessing controls what the service does with a finished Usenet download.
type PostProcessing int

const (
	PostProcessDefault           PostProcessing = -1
	PostProcessNone              PostProcessing = 0
	PostProcessRepair            PostProcessing = 1
	PostProcessRepairUnpack      PostProcessing = 2
	PostProcessRepairUnpackClean PostProcessing = 3
)

// Action is a control operation on a torrent or Usenet download.
type Action string

const (
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
	ActionReannounce Action = "reannounce"
	ActionDelete     Action = "delete"
)

type QueuedType string

const (
	QueuedTorrent QueuedType = "torrent"
	QueuedUsenet  QueuedType = "usenet"
	QueuedWebDL   QueuedType = "webdl"
)

// QueuedItem is a submission the service accepted but has not started yet.
type QueuedItem struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Magnet      string     `json:"magnet,omitempty"`
	TorrentFile string     `json:"torrent_file,omitempty"`
	Hash        string     `json:"hash"`
	Name        string     `json:"name"`
	Type        QueuedType `json:"type"`
}

type TorrentFile struct {
	ID           int64  `json:"id"`
	MD5          string `json:"md5,omitempty"`
	Hash         string `json:"hash"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Zipped       bool   `json:"zipped"`
	S3Path       string `json:"s3_path,omitempty"`
	Infected     bool   `json:"infected"`
	MimeType     string `json:"mimetype"`
	ShortName    string `json:"short_name"`
	AbsolutePath string `json:"absolute_path"`
}

// TorrentInfo is an active torrent, or a queued one mapped by TorrentFromQueued.
type TorrentInfo struct {
	ID               int64         `json:"id"`
	AuthID           string        `json:"auth_id"`
	Server           int           `json:"server"`
	Hash             string        `json:"hash"`
	Name             string        `json:"name"`
	Magnet           string        `json:"magnet"`
	Size             int64         `json:"size"`
	Active           bool          `json:"active"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	DownloadState    string        `json:"download_state"`
	Seeds            int           `json:"seeds"`
	Peers            int           `json:"peers"`
	Ratio            float64       `json:"ratio"`
	Progress         float64       `json:"progress"`
	DownloadSpeed    int64         `json:"download_speed"`
	UploadSpeed      int64         `json:"upload_speed"`
	ETA              int64         `json:"eta"`
	TorrentFile      bool          `json:"torrent_file"`
	ExpiresAt        *time.Time    `json:"expires_at"`
	DownloadPresent  bool          `json:"download_present"`
	Files            []TorrentFile `json:"files"`
	DownloadPath     string        `json:"download_path"`
	InactiveCheck    int           `json:"inactive_check"`
	Availability     float64       `json:"availability"`
	DownloadFinished bool          `json:"download_finished"`
	Tracker          *string       `json:"tracker"`
	TotalUploaded    int64         `json:"total_uploaded"`
	TotalDownloaded  int64         `json:"total_downloaded"`
	Cached           bool          `json:"cached"`
	Owner            string        `json:"owner"`
	SeedTorrent      bool          `json:"seed_torrent"`
	AllowZipped      bool          `json:"allow_zipped"`
	LongTermSeeding  bool          `json:"long_term_seeding"`
	TrackerMessage   *string       `json:"tracker_message"`
}

func (t *TorrentInfo) IsQueued() bool {
	return t.DownloadState == StateQueued
}

type UsenetFile = TorrentFile

// UsenetInfo is an active Usenet download, or a queued one mapped by UsenetFromQueued.
type UsenetInfo struct {
	ID               int64        `json:"id"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	AuthID           string       `json:"auth_id"`
	Name             string       `json:"name"`
	Hash             string       `json:"hash"`
	DownloadState    string       `json:"download_state"`
	DownloadSpeed    int64        `json:"download_speed"`
	OriginalURL      string       `json:"original_url"`
	ETA              int64        `json:"eta"`
	Progress         float64      `json:"progress"`
	Size             int64        `json:"size"`
	DownloadID       string       `json:"download_id"`
	Files            []UsenetFile `json:"files"`
	Active           bool         `json:"active"`
	Cached           bool         `json:"cached"`
	DownloadPresent  bool         `json:"download_present"`
	DownloadFinished bool         `json:"download_finished"`
	ExpiresAt        *time.Time   `json:"expires_at"`
}

func (u *UsenetInfo) IsQueued() bool {
	return u.DownloadState == StateQueued
}

type AvailableFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// AvailableTorrent is one entry of a cache check. Its presence means the service
// already holds the content.
type AvailableTorrent struct {
	Name  string          `json:"name"`
	Size  int64           `json:"size"`
	Hash  string          `json:"hash"`
	Files []AvailableFile `json:"files,omitempty"`
}

type AvailableUsenet = AvailableTorrent

type TorrentAddResult struct {
	TorrentID int64  `json:"torrent_id"`
	QueuedID  int64  `json:"queued_id,omitempty"`
	Hash      string `json:"hash"`
	AuthID    string `json:"auth_id"`
	Name      string `json:"name,omitempty"`
}

type UsenetAddResult struct {
	UsenetDownloadID int64  `json:"usenetdownload_id"`
	QueuedID         int64  `json:"queued_id,omitempty"`
	Hash             string `json:"hash"`
	AuthID           string `json:"auth_id"`
	Name             string `json:"name,omitempty"`
}

type User struct {
	ID                        *int64        `json:"id,omitempty"`
	AuthID                    *uuid.UUID    `json:"auth_id,omitempty"`
	CreatedAt                 *time.Time    `json:"created_at,omitempty"`
	UpdatedAt                 *time.Time    `json:"updated_at,omitempty"`
	Plan                      *int          `json:"plan,omitempty"`
	TotalDownloaded           *int64        `json:"total_downloaded,omitempty"`
	Customer                  *string       `json:"customer,omitempty"`
	IsSubscribed              *bool         `json:"is_subscribed,omitempty"`
	PremiumExpiresAt          *time.Time    `json:"premium_expires_at,omitempty"`
	CooldownUntil             *time.Time    `json:"cooldown_until,omitempty"`
	Email                     *string       `json:"email,omitempty"`
	UserReferral              *uuid.UUID    `json:"user_referral,omitempty"`
	BaseEmail                 *string       `json:"base_email,omitempty"`
	TotalBytesDownloaded      *int64        `json:"total_bytes_downloaded,omitempty"`
	TotalBytesUploaded        *int64        `json:"total_bytes_uploaded,omitempty"`
	TorrentsDownloaded        *int64        `json:"torrents_downloaded,omitempty"`
	WebDownloadsDownloaded    *int64        `json:"web_downloads_downloaded,omitempty"`
	UsenetDownloadsDownloaded *int64        `json:"usenet_downloads_downloaded,omitempty"`
	AdditionalConcurrentSlots *int64        `json:"additional_concurrent_slots,omitempty"`
	LongTermSeeding           *bool         `json:"long_term_seeding,omitempty"`
	LongTermStorage           *bool         `json:"long_term_storage,omitempty"`
	Settings                  *UserSettings `json:"settings,omitempty"`
}

// UserSettings mirrors the account preferences. Several ids are typed loosely by the
// service and are kept as raw values.
type UserSettings struct {
	EmailNotifications       *bool   `json:"email_notifications,omitempty"`
	WebNotifications         *bool   `json:"web_notifications,omitempty"`
	MobileNotifications      *bool   `json:"mobile_notifications,omitempty"`
	RSSNotifications         *bool   `json:"rss_notifications,omitempty"`
	DownloadSpeedInTab       *bool   `json:"download_speed_in_tab,omitempty"`
	ShowTrackerInTorrent     *bool   `json:"show_tracker_in_torrent,omitempty"`
	StremioQuality           []int   `json:"stremio_quality,omitempty"`
	StremioResolution        []int   `json:"stremio_resolution,omitempty"`
	StremioLanguage          []int   `json:"stremio_language,omitempty"`
	StremioCache             []int   `json:"stremio_cache,omitempty"`
	StremioSizeLower         *int64  `json:"stremio_size_lower,omitempty"`
	StremioSizeUpper         *int64  `json:"stremio_size_upper,omitempty"`
	GoogleDriveFolderID      *string `json:"google_drive_folder_id,omitempty"`
	OnedriveSavePath         *string `json:"onedrive_save_path,omitempty"`
	DiscordID                any     `json:"discord_id,omitempty"`
	DiscordNotifications     *bool   `json:"discord_notifications,omitempty"`
	StremioAllowAdult        *bool   `json:"stremio_allow_adult,omitempty"`
	WebdavFlatten            *bool   `json:"webdav_flatten,omitempty"`
	StremioSeedTorrents      *int    `json:"stremio_seed_torrents,omitempty"`
	SeedTorrents             *int    `json:"seed_torrents,omitempty"`
	AllowZipped              *bool   `json:"allow_zipped,omitempty"`
	StremioAllowZipped       *bool   `json:"stremio_allow_zipped,omitempty"`
	OnefichierFolderID       any     `json:"onefichier_folder_id,omitempty"`
	GofileFolderID           any     `json:"gofile_folder_id,omitempty"`
	JdownloaderNotifications *bool   `json:"jdownloader_notifications,omitempty"`
	WebhookNotifications     *bool   `json:"webhook_notifications,omitempty"`
	WebhookURL               any     `json:"webhook_url,omitempty"`
	TelegramNotifications    *bool   `json:"telegram_notifications,omitempty"`
	TelegramID               any     `json:"telegram_id,omitempty"`
	MegaEmail                any     `json:"mega_email,omitempty"`
	MegaPassword             any     `json:"mega_password,omitempty"`
}
