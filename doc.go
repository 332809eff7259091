// Package cumulus drives Cumulus Linux switches over SSH or telnet and
// exposes their state through the cross-vendor network-automation schema.
//
// A Driver speaks one of two command dialects, fixed at Open: NVUE on
// Cumulus Linux 5.x and the NCLU/vtysh command set on older releases. The
// dialect is detected automatically unless pinned with WithDialect.
//
//	d := cumulus.NewDriver("leaf01",
//		cumulus.WithUsername("cumulus"),
//		cumulus.WithPassword("CumulusLinux!"),
//	)
//	if err := d.Open(); err != nil {
//		log.Fatal(err)
//	}
//	defer d.Close()
//
//	facts, err := d.GetFacts()
//
// Configuration changes follow the stage/compare/commit cycle: Load*Candidate
// stages lines in the device's candidate store, CompareConfig renders the
// diff, CommitConfig applies it and DiscardConfig throws it away. On the
// NVUE dialect a failed commit leaves the running configuration untouched
// and RollbackConfig can revert to the previous revision; the legacy dialect
// offers neither guarantee, which CommitFailedError.Atomic and
// errs.ErrRollbackUnavailable make explicit.
package cumulus
