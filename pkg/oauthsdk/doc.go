/*
Package oauthsdk provides a Go client for the authd machine-to-machine token
service, plus the OAuth2 error and wire types shared with the server.

Every operation of the service is authenticated with client credentials, so
all token methods take the client ID and secret:

	client := oauthsdk.NewSDKClient("https://auth.example.com")

	// Obtain a token pair
	tokens, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, []string{"read:facilities"})

	// Rotate the refresh token for a fresh pair
	tokens, err = client.RefreshGrant(ctx, clientID, clientSecret, tokens.RefreshToken)

	// Inspect a token presented by a peer
	info, err := client.Introspect(ctx, clientID, clientSecret, peerToken)

	// Revoke a token ahead of expiry
	err = client.RevokeToken(ctx, clientID, clientSecret, tokens.AccessToken)

Administrative operations (/v1/clients) additionally require AdminToken to be
set; check errors with a type assertion on *OAuth2Error to branch on the
RFC 6749 error code.
*/
package oauthsdk
