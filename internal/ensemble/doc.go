// Package ensemble runs many realizations of the vaccination model and
// reduces them to per-day confidence bands.
//
// Realizations are independent. Realization i draws from its own PCG stream
// seeded with (Seed, i), so the ensemble is reproducible regardless of how
// many workers run it. A single collector goroutine writes completed
// trajectories into per-metric matrices, and the optional wall-clock budget
// is checked between realizations only: once it is exhausted no further
// realizations are started, in-flight ones finish, and the finished rows
// always form a prefix of the requested parameter sets.
//
// The daily vaccinations metric is converted to include second doses and
// resampled onto a weekly grid before statistics are taken (see
// SecondDoseWeekly).
package ensemble
