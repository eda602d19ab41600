package models

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
	"k8s.io/klog/v2"
)

// DefaultDirCreationPerm is used when creating cache directories.
const DefaultDirCreationPerm = os.FileMode(0755)

// Handle is an opened model resource: the resolved entry plus a local,
// memory-mapped view of the model file for adapters needing random access.
type Handle struct {
	// Entry is the resolved identity the handle was opened for.
	Entry Entry
	// Path is the local file the handle maps.
	Path string

	reader *mmap.ReaderAt
}

// ReadAt implements io.ReaderAt over the model file.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	return h.reader.ReadAt(p, off)
}

// Len returns the model file size in bytes.
func (h *Handle) Len() int { return h.reader.Len() }

// Close unmaps the model file.
func (h *Handle) Close() error { return h.reader.Close() }

// Cache opens resolved entries as local handles, downloading remote
// locations into its directory on first use. It is safe for concurrent use;
// handles are shared per resolved location, so adapters must not Close a
// cached handle themselves; closing is the cache owner's job via Release.
type Cache struct {
	dir string

	mu   sync.Mutex
	open map[string]*Handle
}

// NewCache returns a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, open: make(map[string]*Handle)}
}

// Open returns the handle for a resolved entry, reusing a previously opened
// one for the same resolved location.
func (c *Cache) Open(e Entry) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.open[e.Location]; ok {
		return h, nil
	}

	localPath, err := c.localize(e)
	if err != nil {
		return nil, err
	}
	reader, err := mmap.Open(localPath)
	if err != nil {
		return nil, &ResourceError{
			Tool: e.Tool, Language: e.Language, Variant: e.Variant,
			Reason: errors.Wrapf(err, "failed to mmap %s", localPath).Error(),
		}
	}
	h := &Handle{Entry: e, Path: localPath, reader: reader}
	c.open[e.Location] = h
	return h, nil
}

// Release closes all open handles.
func (c *Cache) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for loc, h := range c.open {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.open, loc)
	}
	return firstErr
}

// localize maps the entry location to a local file, downloading it into the
// cache directory when it is a URL.
func (c *Cache) localize(e Entry) (string, error) {
	u, err := url.Parse(e.Location)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		// Local path; must already exist.
		localPath := e.Location
		if u != nil && u.Scheme == "file" {
			localPath = u.Path
		}
		if _, statErr := os.Stat(localPath); statErr != nil {
			return "", &ResourceError{
				Tool: e.Tool, Language: e.Language, Variant: e.Variant,
				Reason: statErr.Error(),
			}
		}
		return localPath, nil
	}

	// Remote: cache under a name derived from the URL so distinct models
	// never collide.
	sum := sha256.Sum256([]byte(e.Location))
	name := hex.EncodeToString(sum[:8]) + "-" + path.Base(u.Path)
	localPath := filepath.Join(c.dir, name)
	if err := c.lockedDownload(e.Location, localPath); err != nil {
		return "", &ResourceError{
			Tool: e.Tool, Language: e.Language, Variant: e.Variant,
			Reason: err.Error(),
		}
	}
	return localPath, nil
}

// lockedDownload fetches url to filePath unless it already exists. It
// downloads to filePath+".downloading" and atomically renames into place,
// using filePath+".lock" to coordinate concurrent processes downloading the
// same model.
func (c *Cache) lockedDownload(rawURL, filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create cache directory for %s", filePath)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		if _, err := os.Stat(filePath); err == nil {
			// Some concurrent process already downloaded the file.
			return
		}
		mainErr = download(rawURL, filePath)
		if mainErr != nil {
			return
		}
		if err := os.Remove(lockPath); err != nil {
			klog.Warningf("failed to remove lock file %s: %v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.Wrapf(errLock, "while locking %s to download %s", lockPath, rawURL)
	}
	return nil
}

func download(rawURL, filePath string) error {
	tmpPath := filePath + ".downloading"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary download file %s", tmpPath)
	}
	var done bool
	defer func() {
		if !done {
			if err := tmpFile.Close(); err != nil {
				klog.Warningf("failed to close temporary file %s: %v", tmpPath, err)
			}
			if err := os.Remove(tmpPath); err != nil {
				klog.Warningf("failed to remove temporary file %s: %v", tmpPath, err)
			}
		}
	}()

	klog.V(1).Infof("downloading model %s", rawURL)
	resp, err := http.Get(rawURL)
	if err != nil {
		return errors.Wrapf(err, "failed to download %s", rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("failed to download %s: %s", rawURL, resp.Status)
	}
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return errors.Wrapf(err, "failed to download %s", rawURL)
	}

	done = true
	if err := tmpFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		return errors.Wrapf(err, "failed to move %s to %s", tmpPath, filePath)
	}
	return nil
}

// execOnFileLock locks lockPath (creating it if needed) and runs fn while
// holding the lock, polling with a 1 to 2 second period until acquired. The
// lock file is not removed; fn may remove it when no further callers remain.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %s", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}
	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking %s", lockPath)
			} else {
				klog.Warningf("failed to unlock %s: %v", lockPath, unlockErr)
			}
		}
	}()
	fn()
	return
}
