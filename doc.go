// Package sudoemail is the client-side sealing core of the Sudo Platform
// email SDK.
//
// Fields that must stay private from the service (aliases, message headers,
// blocked addresses) are sealed on the device before upload and unsealed
// after download. Keys never leave the device's KeyStore.
//
// Two envelope formats are produced:
//
//   - AES/CBC/PKCS7Padding under a named symmetric key, used for data the
//     device writes for itself.
//   - RSAEncryptionOAEPAESCBC, where a one-time AES-256 key is wrapped with
//     RSA-OAEP under a device key pair, used for data sealed for a device by
//     someone else.
//
// Basic usage:
//
//	client, err := sudoemail.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	envelope, err := client.SealAlias(ctx, "Work")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	addr := &sudoemail.EmailAddress{EmailAddress: "me@example.com", SealedAlias: envelope}
//	out := client.UnsealEmailAddresses(ctx, []*sudoemail.EmailAddress{addr})
//	fmt.Println(out.Status, addr.Alias)
//
// List reads never fail as a whole. Each item carries an EntityStatus, and
// a batch with failed items is reported as ListStatusPartial.
package sudoemail
