package version

import "fmt"

type Info struct {
	Version string `json:"version"`
	Channel string `json:"channel"`
}

func (i Info) String() string {
	if i.Channel == "" {
		return i.Version
	}
	return fmt.Sprintf("%s-%s", i.Version, i.Channel)
}

// Set at build time with -ldflags "-X".
var (
	Version = "dev"
	Channel = ""
)

func GetInfo() Info {
	return Info{
		Version: Version,
		Channel: Channel,
	}
}
