package bot

import (
	"fmt"
	"os"
	"sync"

	"github.com/bytedance/sonic"
)

// BotIdentity is the display profile shown for an automated seat.
type BotIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
}

var (
	botIdentities []BotIdentity
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var ids []BotIdentity
		if err := sonic.Unmarshal(data, &ids); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		botIdentities = ids
	})
	return loadErr
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	if len(botIdentities) == 0 {
		return BotIdentity{
			ID:          fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("Bot %d", index),
			AvatarIndex: index,
		}
	}
	return botIdentities[index%len(botIdentities)]
}
