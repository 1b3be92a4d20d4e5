/*
go-dyntrack provides a frame-synchronous multi-object tracking engine that
turns per-frame detector output into persistent dynamic-obstacle tracks for a
mobile robot navigation stack.

The detector is an external collaborator: any source producing per-frame
lists of position/extent/confidence detections can feed the engine.  The
tracker package runs one synchronous cycle per detector frame (predict,
associate, update, project) and emits obstacle records with filtered position,
velocity and an optional short-horizon predicted trajectory, suitable for
insertion into a costmap layer.

See the trackreplay command for running recorded detection logs through the
engine offline.
*/
package dyntrack
