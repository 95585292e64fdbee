package session

// AccountOp is the operation currently running on the account resource.
type AccountOp int

const (
	AccountIdle AccountOp = iota
	AccountGenerating
	AccountPersisting
	AccountRetrieving
)

func (o AccountOp) String() string {
	switch o {
	case AccountGenerating:
		return "generating"
	case AccountPersisting:
		return "persisting"
	case AccountRetrieving:
		return "retrieving"
	default:
		return "idle"
	}
}

// DriveOp is the operation currently running on the drive resource.
type DriveOp int

const (
	DriveNone DriveOp = iota
	DriveListing
	DriveUploading
	DriveDownloading
	DriveDeleting
	DriveCreatingFolder
)

func (o DriveOp) String() string {
	switch o {
	case DriveListing:
		return "listing"
	case DriveUploading:
		return "uploading"
	case DriveDownloading:
		return "downloading"
	case DriveDeleting:
		return "deleting"
	case DriveCreatingFolder:
		return "creating_folder"
	default:
		return "none"
	}
}
