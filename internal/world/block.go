package world

// Block is a block state id. Ids are assigned by the registry; only air is
// fixed here so the world package can test for emptiness without a registry
// dependency.
type Block uint16

// BlockAir is the empty block state.
const BlockAir Block = 0

// Face identifies one of the six block faces.
type Face int

const (
	FaceWest   Face = iota // -x
	FaceEast               // +x
	FaceBottom             // -y
	FaceTop                // +y
	FaceNorth              // -z
	FaceSouth              // +z
)

// Normal returns the unit offset toward the face's neighbor.
func (f Face) Normal() (int, int, int) {
	switch f {
	case FaceWest:
		return -1, 0, 0
	case FaceEast:
		return 1, 0, 0
	case FaceBottom:
		return 0, -1, 0
	case FaceTop:
		return 0, 1, 0
	case FaceNorth:
		return 0, 0, -1
	default:
		return 0, 0, 1
	}
}
