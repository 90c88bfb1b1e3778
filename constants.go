package steam

const (
	communityHost = "steamcommunity.com"
	storeHost     = "store.steampowered.com"
	helpHost      = "help.steampowered.com"

	communityBase = "https://" + communityHost
	storeBase     = "https://" + storeHost
	apiBase       = "https://api.steampowered.com"

	mobileReferer = communityBase + "/mobilelogin?oauth_client_id=" + oauthClientID +
		"&oauth_scope=read_profile%20write_profile%20read_client%20write_client"

	loginGetRSAKeyURL = communityBase + "/login/getrsakey"
	loginDoURL        = communityBase + "/login/dologin"

	confirmationBase = communityBase + "/mobileconf"

	queryTimeURL            = apiBase + "/ITwoFactorService/QueryTime/v0001"
	addAuthenticatorURL     = apiBase + "/ITwoFactorService/AddAuthenticator/v0001"
	finalizeAuthenticatorURL = apiBase + "/ITwoFactorService/FinalizeAddAuthenticator/v0001"
	removeAuthenticatorURL  = apiBase + "/ITwoFactorService/RemoveAuthenticator/v0001"
	getWGTokenURL           = apiBase + "/IMobileAuthService/GetWGToken/v0001"

	phoneAjaxURL = communityBase + "/steamguard/phoneajax"

	accountProbeURL = storeBase + "/account"

	apiKeyURL         = communityBase + "/dev/apikey"
	apiKeyRegisterURL = communityBase + "/dev/registerkey"
	apiKeyRevokeURL   = communityBase + "/dev/revokekey"

	oauthClientID = "DE45CD61"
	oauthScope    = "read_profile write_profile read_client write_client"

	// Sentinel host the mobile app redirects to when a session dies.
	lostAuthHost = "lostauth"

	userAgentValue      = "Mozilla/5.0 (Linux; U; Android 4.1.1; en-us; Google Nexus 4 - 4.1.1 - API 16 - 768x1280 Build/JRO03S) AppleWebKit/534.30 (KHTML, like Gecko) Version/4.0 Mobile Safari/534.30"
	xRequestedWithValue = "com.valvesoftware.android.steam.community"
	acceptValue         = "text/javascript, text/html, application/xml, text/xml, */*"
)
