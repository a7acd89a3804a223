package remote

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/arthur-debert/deliveryman/pkg/errors"
	"github.com/arthur-debert/deliveryman/pkg/logging"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SFTPDefaultPort is used when no port is configured.
const SFTPDefaultPort = 22

// SFTP status codes are not exported by pkg/sftp.
const (
	sshFxNoSuchFile = 2
)

// SFTPConfig holds everything needed to open an authenticated session.
// Authentication is tried in order: private key, password, ssh-agent.
type SFTPConfig struct {
	Host     string
	Port     int
	Username string

	Password   string
	PrivateKey []byte
	Passphrase string

	// KnownHostsFile enables host key verification when set.
	KnownHostsFile string
	Timeout        time.Duration
}

func (c SFTPConfig) addr() string {
	port := c.Port
	if port == 0 {
		port = SFTPDefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// DialSFTP opens an SSH connection and an SFTP session on top of it. Any
// failure here is a connectivity error and is returned verbatim.
func DialSFTP(cfg SFTPConfig) (*Client, error) {
	logger := logging.GetLogger("remote.sftp")

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConnectivity, "unable to prepare credentials for %s@%s", cfg.Username, cfg.Host)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsFile != "" {
		if hostKeyCallback, err = knownhosts.New(cfg.KnownHostsFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConnectivity, "unable to read known hosts %s", cfg.KnownHostsFile)
		}
	} else {
		logger.Warn().Str("host", cfg.Host).Msg("No known_hosts file configured, host key is not verified")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	config := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	sshClient, err := makeSSHClient(cfg.addr(), config, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConnectivity, "unable to connect to host %s, check credentials, username or host", cfg.addr())
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, errors.Wrapf(err, errors.ErrConnectivity, "unable to start sftp subsystem on %s", cfg.addr())
	}

	logger.Debug().Str("addr", cfg.addr()).Str("user", cfg.Username).Msg("SFTP session established")
	return newClient(&sftpDriver{ssh: sshClient, client: sftpClient}, "remote.sftp"), nil
}

// authMethods collects every configured method in preference order: private
// key, password, then ssh-agent. The handshake falls through them in turn.
func authMethods(cfg SFTPConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if len(cfg.PrivateKey) > 0 {
		var signer ssh.Signer
		var err error
		if cfg.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(cfg.PrivateKey, []byte(cfg.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(cfg.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		conn, err := net.Dial("unix", sock)
		switch {
		case err == nil:
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		case len(methods) == 0:
			return nil, fmt.Errorf("connect to ssh-agent: %w", err)
		default:
			logger := logging.GetLogger("remote.sftp")
			logger.Debug().Err(err).Msg("ssh-agent unavailable, skipped")
		}
	}

	if len(methods) == 0 {
		return nil, stderrors.New("no password or key given and SSH_AUTH_SOCK is not set")
	}
	return methods, nil
}

// makeSSHClient dials addr and performs the SSH handshake
func makeSSHClient(addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	baseConnection, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}

	conn, newCh, reqCh, err := ssh.NewClientConn(baseConnection, addr, config)
	if err != nil {
		_ = baseConnection.Close()
		return nil, err
	}
	return ssh.NewClient(conn, newCh, reqCh), nil
}

// sftpDriver serves file primitives over SFTP and commands over SSH sessions
type sftpDriver struct {
	ssh    *ssh.Client
	client *sftp.Client
}

func (d *sftpDriver) Stat(name string) (fs.FileInfo, error)      { return d.client.Stat(name) }
func (d *sftpDriver) Lstat(name string) (fs.FileInfo, error)     { return d.client.Lstat(name) }
func (d *sftpDriver) ReadDir(name string) ([]fs.FileInfo, error) { return d.client.ReadDir(name) }
func (d *sftpDriver) Mkdir(name string) error                    { return d.client.Mkdir(name) }
func (d *sftpDriver) Rename(oldpath, newpath string) error       { return d.client.Rename(oldpath, newpath) }
func (d *sftpDriver) Symlink(target, link string) error          { return d.client.Symlink(target, link) }
func (d *sftpDriver) Readlink(name string) (string, error)       { return d.client.ReadLink(name) }
func (d *sftpDriver) Realpath(name string) (string, error)       { return d.client.RealPath(name) }
func (d *sftpDriver) Chmod(name string, mode fs.FileMode) error  { return d.client.Chmod(name, mode) }

// Remove deletes files and links with SSH_FXP_REMOVE and directories with
// SSH_FXP_RMDIR; servers disagree on which one a plain Remove should send.
func (d *sftpDriver) Remove(name string) error {
	info, err := d.client.Lstat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return d.client.RemoveDirectory(name)
	}
	return d.client.Remove(name)
}

func (d *sftpDriver) Create(name string) (io.WriteCloser, error) {
	return d.client.Create(name)
}

func (d *sftpDriver) Exec(command, cwd string) ([]byte, error) {
	session, err := d.ssh.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConnectivity, "unable to open ssh session")
	}
	defer session.Close()

	if cwd != "" {
		command = "cd " + Quote(cwd) + " && " + command
	}
	return session.CombinedOutput(command)
}

func (d *sftpDriver) Close() error {
	sftpErr := d.client.Close()
	sshErr := d.ssh.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return sshErr
}

func isStatusCode(err error, code uint32) bool {
	var statusErr *sftp.StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.Code == code
	}
	return false
}
