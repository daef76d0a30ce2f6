package blaze

// Component ids observed in retail client traffic.
const (
	ComponentAuthentication uint16 = 1
	ComponentGameManager    uint16 = 4
	ComponentRedirector     uint16 = 7
	ComponentUtil           uint16 = 9
	ComponentMessaging      uint16 = 15
	ComponentUserSessions   uint16 = 30722
)

// Authentication commands.
const (
	AuthCmdListEntitlements uint16 = 0x1D
	AuthCmdLogin            uint16 = 0x28
	AuthCmdLogout           uint16 = 0x2D
	AuthCmdSilentLogin      uint16 = 0x32
)

// Util commands.
const (
	UtilCmdFetchClientConfig uint16 = 0x01
	UtilCmdPing              uint16 = 0x02
	UtilCmdPreAuth           uint16 = 0x07
	UtilCmdPostAuth          uint16 = 0x08
	UtilCmdUserSettingsSave  uint16 = 0x0B
	UtilCmdUserSettingsLoad  uint16 = 0x0C
)

// GameManager commands.
const (
	GameCmdCreateGame          uint16 = 0x01
	GameCmdAdvanceGameState    uint16 = 0x03
	GameCmdSetGameSettings     uint16 = 0x04
	GameCmdSetGameAttributes   uint16 = 0x07
	GameCmdSetPlayerAttributes uint16 = 0x08
	GameCmdJoinGame            uint16 = 0x09
	GameCmdRemovePlayer        uint16 = 0x0B
	GameCmdStartMatchmaking    uint16 = 0x0D
	GameCmdCancelMatchmaking   uint16 = 0x0E
	GameCmdReplayGame          uint16 = 0x13
	GameCmdUpdateMeshConnection uint16 = 0x1D
)

// GameManager notifications.
const (
	GameNotifyGameSetup          uint16 = 0x14
	GameNotifyPlayerJoining      uint16 = 0x15
	GameNotifyPlayerJoinComplete uint16 = 0x1E
	GameNotifyPlayerRemoved      uint16 = 0x28
	GameNotifyGameStateChange    uint16 = 0x50
	GameNotifyGameSettingsChange uint16 = 0x51
	GameNotifyGameAttribChange   uint16 = 0x52
	GameNotifyPlayerAttribChange uint16 = 0x5A
	GameNotifyGameReplay         uint16 = 0x71
	GameNotifyPostJoinedGame     uint16 = 0x76
)

// Redirector commands.
const (
	RedirectorCmdGetServerInstance uint16 = 0x01
)

// Messaging commands and notifications.
const (
	MessagingCmdSendMessage   uint16 = 0x01
	MessagingCmdFetchMessages uint16 = 0x05
	MessagingNotifyMessage    uint16 = 0x01
)

// UserSessions commands and notifications.
const (
	UserSessionsCmdUpdateHardwareFlags uint16 = 0x08
	UserSessionsCmdUpdateNetworkInfo   uint16 = 0x14
	UserSessionsCmdResumeSession       uint16 = 0x21
	UserSessionsNotifyUserSessionExtendedDataUpdate uint16 = 0x01
	UserSessionsNotifyUserAdded                     uint16 = 0x02
	UserSessionsNotifyUserUpdated                   uint16 = 0x05
)
