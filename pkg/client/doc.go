// Package client is the Go SDK for the custody registry HTTP API.
//
// Read-only calls need no credentials:
//
//	c, err := client.New("http://localhost:8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := c.Verify(ctx, "SHAKTI-C-001")
//	fmt.Println(res.Status, res.CustodyEvents)
//
// # Operator tokens
//
// Registering components, appending custody events and running the
// deployment simulation require an operator token when the registry has
// operator auth enabled. Mint one with 'custodyctl token' and pass it in:
//
//	c, _ := client.New(registryURL, client.WithBearerToken(token))
//
// or load it from the file custodyctl writes:
//
//	c, _ := client.NewFromTokenFile(registryURL,
//	    os.ExpandEnv("$HOME/.custody/token"),
//	)
//
// # Recording custody
//
//	comp, err := c.Register(ctx, client.RegisterRequest{
//	    ID:                  "HSM-SEC-001",
//	    Name:                "Hardware Security Module",
//	    Manufacturer:        "C_DAC",
//	    ManufacturingDate:   "2024-08-20",
//	    BatchID:             "BATCH_Q3_002",
//	    IndigenousCertified: true,
//	    SecurityClearance:   "TOP_SECRET",
//	})
//	n, err := c.AppendEvent(ctx, comp.ID, client.EventRequest{
//	    Stage:    "DISTRIBUTION",
//	    Handler:  "BPRD_LOGISTICS_DIVISION",
//	    Location: "Central Warehouse - New Delhi",
//	    Action:   "COMPONENT_SHIPPED_TO_FIELD",
//	})
//
// # Caching verdicts
//
// WithCacheTTL keeps verification results in memory for the given TTL.
// Any successful AppendEvent from the same client invalidates the entry
// for that component.
package client
