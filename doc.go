// Package steam logs a Steam account into the mobile web session,
// generates Steam Guard one-time codes and approves or denies pending
// mobile confirmations, without a browser.
//
// The lifecycle is two-staged: an Authenticator holds the account
// secrets and knows how to run the login handshake; a successful
// Login consumes it and returns a Session, which exposes every
// operation that requires valid session cookies. Confirmation
// operations additionally require the mobile confirmation secrets and
// live on a ConfirmationClient obtained from the Session.
//
//	identity := steam.Identity{
//		Username:       "accountname",
//		Password:       "password",
//		SharedSecret:   "...",
//		IdentitySecret: "...",
//	}
//
//	session, err := steam.New(identity).Login(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	confs, err := session.ConfirmationClient()
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = confs.HandleConfirmations(ctx, steam.Accept, func(c steam.Confirmation) bool {
//		return c.Kind == steam.ConfirmationTrade
//	})
package steam
