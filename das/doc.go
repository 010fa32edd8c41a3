/*
Package das contains the data availability sampling routines of the light client.

For every finalized block header the client estimates how likely it is that the data committed
to by the header is actually available. It does so by sampling a few random cells of the
extended matrix, verifying each of them against the row commitments and turning the amount of
verified cells into a confidence score. A client following an application additionally recovers
the application's data out of verified cells.

A single block is processed by the Pipeline: the Planner picks positions, the Fetcher retrieves
them from the peer-to-peer cache with the node RPC as a fallback, verified cells are scored and,
in app mode, decoded. Results are persisted in the store.

Blocks are fed to the Pipeline by the DASer through the samplingCoordinator. It launches parallel
workers over new headers received via subscription (recent jobs), over the blocks between the
last checkpoint and the current network head (catch-up jobs) and over blocks whose previous pass
failed or fell short of the target confidence (retry jobs). The sampling state is periodically
stored as a checkpoint, so catching up resumes where it stopped after a restart.
*/
package das
