package utils

import (
	"bytes"
	"fmt"
	"github.com/anacrolix/torrent/metainfo"
	"strings"
)

// MagnetInfoHash extracts the lower-case hex info-hash from a magnet URI.
func MagnetInfoHash(link string) (string, error) {
	m, err := metainfo.ParseMagnetUri(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("parsing magnet: %w", err)
	}
	return m.InfoHash.HexString(), nil
}

// TorrentFileInfoHash computes the info-hash of a bencoded .torrent payload.
func TorrentFileInfoHash(data []byte) (string, error) {
	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing torrent file: %w", err)
	}
	return mi.HashInfoBytes().HexString(), nil
}
