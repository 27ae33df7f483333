package ws

const (
	// client - server
	MsgCreateSession    = "create_session"
	MsgJoinSession      = "join_session"
	MsgJoinMatchmaking  = "join_matchmaking"
	MsgLeaveMatchmaking = "leave_matchmaking"
	MsgStartSession     = "start_session"
	MsgLeaveSession     = "leave_session"
	MsgRollDice         = "roll_dice"
	MsgBuyProperty      = "buy_property"
	MsgAuctionProperty  = "auction_property"
	MsgPlaceBid         = "place_bid"
	MsgPassAuction      = "pass_auction"
	MsgBuildImprovement = "build_improvement"
	MsgProposeTrade     = "propose_trade"
	MsgAcceptTrade      = "accept_trade"
	MsgDeclineTrade     = "decline_trade"
	MsgResolveChoice    = "resolve_wheel_choice"
	MsgTeleportTarget   = "choose_teleport_target"
	MsgFreezeTarget     = "choose_freeze_target"
	MsgMiniGameResult   = "report_mini_game_result"
	MsgDraftProperty    = "draft_property"
	MsgEndTurn          = "end_turn"
	MsgPing             = "ping"

	// server - client
	MsgReady       = "ready"
	MsgState       = "state"
	MsgMatchmaking = "matchmaking"
	MsgPong        = "pong"
	MsgError       = "error"
)
