package deliveryman

import (
	"embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort              = "Atomic release deployments over SSH/SFTP"
	MsgSetupShort             = "Prepare the base path on the target"
	MsgStatusShort            = "Show the releases on the target and what is current"
	MsgReleaseShort           = "Manage releases"
	MsgReleaseCreateShort     = "Create, fill and optionally select a release"
	MsgReleaseUploadShort     = "Upload artifacts into an existing release or maintenance"
	MsgReleaseBindShort       = "Link shared resources into a release or maintenance"
	MsgReleaseSelectShort     = "Make a release current"
	MsgReleaseRemoveShort     = "Remove a release"
	MsgReleaseListShort       = "List releases"
	MsgReleaseExecShort       = "Run a command inside a release directory"
	MsgMaintenanceShort       = "Manage the maintenance directory"
	MsgMaintenanceCreateShort = "Fill the maintenance directory"
	MsgMaintenanceSelectShort = "Point current at maintenance"
	MsgMaintenanceCleanShort  = "Empty the maintenance directory"
	MsgConfigureShort         = "Write a profile file"
	MsgVersionShort           = "Print version information"
	MsgCompletionShort        = "Generate shell completion script"

	MsgReleaseExecLong = `Run a command on the target with a release directory as working directory.
The release may be a name, "current" for the selected release or "maintenance".`

	MsgReleaseRemoveLong = `Remove a release directory. The current release is protected unless
--force is given, in which case maintenance is selected before removal.`

	// Flag descriptions
	MsgFlagVerbose         = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagProfile         = "Profile file to load, may be repeated (default deliveryman.yml)"
	MsgFlagHost            = "Target host, or \"local\" for this machine"
	MsgFlagPort            = "SSH port"
	MsgFlagUsername        = "SSH user name"
	MsgFlagPassword        = "SSH password"
	MsgFlagSSHKey          = "Private key file, or the key itself"
	MsgFlagKnownHosts      = "known_hosts file used to verify the host key"
	MsgFlagPath            = "Base path of the deployment on the target"
	MsgFlagTimeout         = "Connection timeout"
	MsgFlagKeepPermissions = "Copy local file permissions to uploaded files"
	MsgFlagFormat          = "Output format: auto, term, text or json"
	MsgFlagArtifact        = "Artifact to upload as [shape:]path, may be repeated"
	MsgFlagShared          = "Shared resource to bind, may be repeated"
	MsgFlagIgnoreMissing   = "Skip shared resources that do not exist"
	MsgFlagReplace         = "Replace a release of the same name"
	MsgFlagSelect          = "Make the result current"
	MsgFlagOverwrite       = "Overwrite existing files"
	MsgFlagForceRemove     = "Remove the current release after selecting maintenance"
	MsgFlagKeep            = "Keep the previous maintenance contents"
	MsgFlagTemplate        = "Write an annotated template instead of the effective profile"
	MsgFlagOutput          = "File to write (default deliveryman.yml)"
	MsgFlagIncludeSecrets  = "Write the password and key passphrase to the file"
	MsgFlagStorePassword   = "Store the password in the OS keyring"

	// Error messages
	MsgErrNoCommand = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/release-create-long.txt
	msgReleaseCreateLongRaw string
	MsgReleaseCreateLong    = strings.TrimSpace(msgReleaseCreateLongRaw)

	//go:embed msgs/release-create-example.txt
	msgReleaseCreateExampleRaw string
	MsgReleaseCreateExample    = strings.TrimRight(msgReleaseCreateExampleRaw, "\n")

	//go:embed msgs/maintenance-long.txt
	msgMaintenanceLongRaw string
	MsgMaintenanceLong    = strings.TrimSpace(msgMaintenanceLongRaw)

	//go:embed msgs/configure-long.txt
	msgConfigureLongRaw string
	MsgConfigureLong    = strings.TrimSpace(msgConfigureLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

// helpTopics holds the documents served by "deliveryman help <topic>"
//
//go:embed topics
var helpTopics embed.FS
